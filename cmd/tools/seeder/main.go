package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	productIDs := seedProducts(db)
	seedOverrides(db, productIDs)
	seedPromotions(db)

	log.Println("Seeding completed successfully!")
}

func seedProducts(db *sql.DB) map[string]string {
	products := []struct {
		SKU          string
		Name         string
		Price        string
		CategoryID   string
		Category     string
		Brand        string
		SupplierID   string
		SupplierName string
		ParentID     string
	}{
		{"BRS-001", "Beras Premium 25kg", "285000", "cat-staples", "staples", "Topi Koki", "sup-sinarmas", "Sinar Mas Distribusi", "grp-rice"},
		{"BRS-002", "Beras Medium 25kg", "240000", "cat-staples", "staples", "Topi Koki", "sup-sinarmas", "Sinar Mas Distribusi", "grp-rice"},
		{"MGR-001", "Minyak Goreng Refill 2L x12", "216000", "cat-staples", "staples", "Bimoli", "sup-salim", "Salim Trading", "grp-oil"},
		{"GLA-001", "Gula Pasir 1kg x24", "312000", "cat-staples", "staples", "Gulaku", "sup-salim", "Salim Trading", "grp-sugar"},
		{"TPG-001", "Tepung Terigu 1kg x20", "190000", "cat-staples", "staples", "Segitiga Biru", "sup-bogasari", "Bogasari Flour Mills", "grp-flour"},
		{"KPI-001", "Kopi Bubuk 165g x48", "530000", "cat-beverage", "beverage", "Kapal Api", "sup-santos", "Santos Jaya Abadi", "grp-coffee"},
		{"TEH-001", "Teh Celup 25s x48", "288000", "cat-beverage", "beverage", "Sariwangi", "sup-unilever", "Unilever Indonesia", "grp-tea"},
		{"AMD-001", "Air Mineral 600ml x24", "52000", "cat-beverage", "beverage", "Aqua", "sup-danone", "Danone Indonesia", "grp-water"},
		{"SBN-001", "Sabun Mandi 85g x72", "252000", "cat-care", "personal-care", "Lifebuoy", "sup-unilever", "Unilever Indonesia", "grp-soap"},
		{"DTR-001", "Deterjen Bubuk 800g x12", "204000", "cat-care", "personal-care", "Rinso", "sup-unilever", "Unilever Indonesia", "grp-detergent"},
		{"MIE-001", "Mie Instan Goreng x40", "118000", "cat-snacks", "snacks", "Indomie", "sup-salim", "Salim Trading", "grp-noodles"},
		{"BSK-001", "Biskuit Kaleng 700g x6", "198000", "cat-snacks", "snacks", "Khong Guan", "sup-khongguan", "Khong Guan Biscuit", "grp-biscuit"},
	}

	fmt.Println("Seeding Products...")
	ids := make(map[string]string)
	for _, p := range products {
		var id string
		err := db.QueryRow(`
			INSERT INTO products (id, sku, name, price, category_id, category, brand, supplier_id, supplier_name, parent_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (sku) DO UPDATE SET
				name = EXCLUDED.name,
				price = EXCLUDED.price,
				category_id = EXCLUDED.category_id,
				category = EXCLUDED.category,
				brand = EXCLUDED.brand,
				supplier_id = EXCLUDED.supplier_id,
				supplier_name = EXCLUDED.supplier_name,
				parent_id = EXCLUDED.parent_id
			RETURNING id;
		`, uuid.NewString(), p.SKU, p.Name, p.Price, p.CategoryID, p.Category, p.Brand, p.SupplierID, p.SupplierName, p.ParentID).Scan(&id)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.SKU, err)
			continue
		}
		ids[p.SKU] = id
	}
	return ids
}

func seedOverrides(db *sql.DB, productIDs map[string]string) {
	overrides := []struct {
		CompanyID string
		SKU       string
		Price     string
	}{
		{"company-warung-besar", "BRS-001", "278000"},
		{"company-warung-besar", "MGR-001", "210000"},
		{"company-horeca-jaya", "AMD-001", "48500"},
		{"company-horeca-jaya", "KPI-001", "515000"},
	}

	fmt.Println("Seeding Price Overrides...")
	for _, o := range overrides {
		productID, ok := productIDs[o.SKU]
		if !ok {
			log.Printf("Missing product ID for %s", o.SKU)
			continue
		}
		_, err := db.Exec(`
			INSERT INTO price_overrides (company_id, product_id, price)
			VALUES ($1, $2, $3)
			ON CONFLICT (company_id, product_id) DO UPDATE SET
				price = EXCLUDED.price,
				updated_at = now();
		`, o.CompanyID, productID, o.Price)
		if err != nil {
			log.Printf("Failed to seed override %s/%s: %v", o.CompanyID, o.SKU, err)
		}
	}
}

func seedPromotions(db *sql.DB) {
	promotions := []struct {
		Name      string
		Kind      string
		Scope     string
		Target    string
		Type      string
		Value     string
		Stackable bool
		MinSpend  string
	}{
		{"Grand Opening 5%", "flat", "ORDER", "", "PERCENT", "5", false, ""},
		{"Staples Week", "rule", "CATEGORY", "staples", "PERCENT", "3", true, ""},
		{"Unilever Push", "rule", "SUPPLIER", "sup-unilever", "FIXED", "15000", true, "500000"},
		{"Bulk Order Bonus", "rule", "ORDER", "", "FIXED", "50000", false, "2000000"},
	}

	fmt.Println("Seeding Promotions...")
	for _, p := range promotions {
		var target, minSpend sql.NullString
		if p.Target != "" {
			target = sql.NullString{String: p.Target, Valid: true}
		}
		if p.MinSpend != "" {
			minSpend = sql.NullString{String: p.MinSpend, Valid: true}
		}
		_, err := db.Exec(`
			INSERT INTO promotions (id, name, kind, active, scope, target, type, value, starts_at, ends_at, stackable, min_spend)
			VALUES ($1, $2, $3, TRUE, $4, $5, $6, $7, NOW(), NOW() + INTERVAL '1 year', $8, $9)
			ON CONFLICT (id) DO NOTHING;
		`, uuid.NewString(), p.Name, p.Kind, p.Scope, target, p.Type, p.Value, p.Stackable, minSpend)
		if err != nil {
			log.Printf("Failed to seed promotion %s: %v", p.Name, err)
		}
	}
}
