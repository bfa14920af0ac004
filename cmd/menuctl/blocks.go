package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Lixing-Zhang/qr-menu/internal/menu"
	"github.com/Lixing-Zhang/qr-menu/internal/models"
	"github.com/Lixing-Zhang/qr-menu/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// yamlProduct mirrors models.Product with the price as a plain string,
// since decimal.Decimal has no YAML marshaller.
type yamlProduct struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Description string `yaml:"description,omitempty"`
	Image       string `yaml:"image,omitempty"`
}

type yamlBlock struct {
	ID            string        `yaml:"id"`
	BlockName     string        `yaml:"blockName"`
	Description   string        `yaml:"description,omitempty"`
	Products      []yamlProduct `yaml:"products"`
	SubCategories []string      `yaml:"subCategories,omitempty"`
}

func newBlocksCmd(a *app) *cobra.Command {
	var (
		format string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Fetch the catalog and print the assembled menu blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (must be json or yaml)", format)
			}

			catalog, err := a.catalog()
			if err != nil {
				return err
			}

			// TTL is irrelevant for a one-shot build
			snap, err := service.NewMenuService(catalog, 0, a.log).Menu(cmd.Context())
			if err != nil {
				return fmt.Errorf("build menu: %w", err)
			}

			blocks := snap.Blocks
			if name != "" {
				block, ok := menu.Find(blocks, name)
				if !ok {
					return fmt.Errorf("block %q not found", name)
				}
				blocks = []models.Block{block}
			}

			return writeBlocks(cmd.OutOrStdout(), format, blocks)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&name, "name", "", "print only the block with this name")

	return cmd
}

func writeBlocks(w io.Writer, format string, blocks []models.Block) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(blocks)
	}

	out := make([]yamlBlock, 0, len(blocks))
	for _, b := range blocks {
		yb := yamlBlock{
			ID:            b.ID,
			BlockName:     b.BlockName,
			Description:   b.Description,
			Products:      make([]yamlProduct, 0, len(b.Products)),
			SubCategories: b.SubCategories,
		}
		for _, p := range b.Products {
			yb.Products = append(yb.Products, yamlProduct{
				ID:          p.ID,
				Name:        p.Name,
				Price:       p.Price.String(),
				Description: p.Description,
				Image:       p.Image,
			})
		}
		out = append(out, yb)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
