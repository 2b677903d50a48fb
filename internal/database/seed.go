package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-service/internal/domain"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
)

var referenceCategories = []string{"Shoes", "Clothing", "Accessories"}

var referenceTypes = []struct {
	Title       string
	Description string
	Category    string
}{
	{"Sneakers", "Everyday athletic shoes", "Shoes"},
	{"Boots", "Weatherproof boots for rough ground", "Shoes"},
	{"T-Shirts", "Short-sleeve cotton shirts", "Clothing"},
	{"Jackets", "Outer layers for cold weather", "Clothing"},
	{"Bags", "Backpacks and totes", "Accessories"},
}

var sampleProducts = []struct {
	Title       string
	Description string
	Price       string
	Category    string
	Type        string
	IsActive    bool
}{
	{"Trail Runner", "Cushioned trail shoe with a grippy outsole.", "129.99", "Shoes", "Sneakers", true},
	{"Canvas High Top", "Classic canvas sneaker with a vulcanized sole.", "59.90", "Shoes", "Sneakers", true},
	{"Logo Tee", "Heavyweight cotton t-shirt with a printed logo.", "24.50", "Clothing", "T-Shirts", false},
	{"Commuter Backpack", "Water-resistant 20L backpack with a laptop sleeve.", "89.00", "Accessories", "Bags", true},
}

type SeedReport struct {
	CreatedCategories int  `json:"created_categories"`
	CreatedTypes      int  `json:"created_types"`
	CreatedProducts   int  `json:"created_products"`
	Noop              bool `json:"noop"`
}

func Seed(db *gorm.DB, includeSamples bool) error {
	_, err := SeedSync(db, includeSamples)
	return err
}

// SeedSync inserts the reference categories and product types, plus demo
// products when includeSamples is set. Every insert is a FirstOrCreate so
// reruns are no-ops.
func SeedSync(db *gorm.DB, includeSamples bool) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "seed", time.Since(start))
	}()

	report := &SeedReport{}
	categories := make(map[string]domain.Category, len(referenceCategories))

	for _, title := range referenceCategories {
		cat := domain.Category{Title: title}
		res := db.Where("title = ?", title).FirstOrCreate(&cat)
		if res.Error != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			report.CreatedCategories++
		}
		categories[title] = cat
	}

	types := make(map[string]domain.ProductType, len(referenceTypes))
	for _, t := range referenceTypes {
		pt := domain.ProductType{Title: t.Title, Description: t.Description, CategoryID: categories[t.Category].ID}
		res := db.Where("title = ? AND category_id = ?", t.Title, pt.CategoryID).FirstOrCreate(&pt)
		if res.Error != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			report.CreatedTypes++
		}
		types[typeKey(t.Category, t.Title)] = pt
	}

	if includeSamples {
		for _, p := range sampleProducts {
			product := domain.Product{Title: p.Title, CategoryID: categories[p.Category].ID}
			res := db.Where("title = ? AND category_id = ?", p.Title, product.CategoryID).
				Attrs(domain.Product{
					UUID:          uuid.NewString(),
					Description:   p.Description,
					Price:         p.Price,
					ProductTypeID: types[typeKey(p.Category, p.Type)].ID,
					IsActive:      p.IsActive,
				}).
				FirstOrCreate(&product)
			if res.Error != nil {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, res.Error
			}
			if res.RowsAffected > 0 {
				report.CreatedProducts++
			}
		}
	}

	report.Noop = report.CreatedCategories == 0 && report.CreatedTypes == 0 && report.CreatedProducts == 0
	observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
	return report, nil
}

func typeKey(category, title string) string {
	return category + "/" + title
}
