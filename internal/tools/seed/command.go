package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-service/internal/config"
	"github.com/sandeepkv93/product-catalog-service/internal/database"
	"github.com/sandeepkv93/product-catalog-service/internal/repository"
	"github.com/sandeepkv93/product-catalog-service/internal/tools/common"
	"github.com/sandeepkv93/product-catalog-service/internal/tools/ui"
)

type options struct {
	envFile    string
	sampleData bool
	ci         bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Catalog seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().BoolVar(&opts.sampleData, "sample-data", false, "also insert demo products")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts), newVerifyCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply reference catalog data",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				withSamples := opts.sampleData || cfg.SeedSampleData
				report, err := database.SeedSync(db, withSamples)
				if err != nil {
					return nil, err
				}
				details := []string{
					fmt.Sprintf("categories created: %d", report.CreatedCategories),
					fmt.Sprintf("product types created: %d", report.CreatedTypes),
				}
				if withSamples {
					details = append(details, fmt.Sprintf("sample products created: %d", report.CreatedProducts))
				}
				if report.Noop {
					details = append(details, "all reference data already present")
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed apply", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
				cfg, _, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				details := []string{
					"would ensure categories: Shoes, Clothing, Accessories",
					"would ensure product types under their categories",
				}
				if opts.sampleData || cfg.SeedSampleData {
					details = append(details, "would insert demo products with generated uuids")
				}
				details = append(details, "reruns are no-ops, every insert is first-or-create")
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed dry-run", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newVerifyCommand(opts *options) *cobra.Command {
	var productUUID string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify seeded catalog data is readable",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed verify", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				categories, err := repository.NewCategoryRepository(db).List(ctx)
				if err != nil {
					return nil, err
				}
				if len(categories) == 0 {
					return nil, fmt.Errorf("no categories found, run seed apply first")
				}
				types, err := repository.NewProductTypeRepository(db).List(ctx)
				if err != nil {
					return nil, err
				}
				details := []string{
					fmt.Sprintf("categories present: %d", len(categories)),
					fmt.Sprintf("product types present: %d", len(types)),
				}
				if id := strings.TrimSpace(productUUID); id != "" {
					product, err := repository.NewProductRepository(db).FindByUUID(ctx, id)
					if err != nil {
						return nil, fmt.Errorf("product lookup: %w", err)
					}
					details = append(details, fmt.Sprintf("product %s resolves to %q", id, product.Title))
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed verify", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&productUUID, "product-uuid", "", "verify a specific product resolves by uuid")
	return cmd
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		return fn(context.Background())
	}
	return ui.Run(title, fn)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
