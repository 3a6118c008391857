package database

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"home-services-server/models"
)

// SeedServices inserts the bookable catalog if it is not present yet.
// Existing slugs are left untouched.
func SeedServices(db *gorm.DB) error {
	services := []models.Service{
		{Category: models.CategoryPlumber, Slug: "tap-repair", Name: "Tap Repair", Price: 199, Duration: "30 mins", Description: "Fix leaky or damaged taps", Icon: "wrench"},
		{Category: models.CategoryPlumber, Slug: "pipe-fitting", Name: "Pipe Fitting", Price: 349, Duration: "1 hour", Description: "Install or repair pipes", Icon: "wrench"},
		{Category: models.CategoryPlumber, Slug: "drainage", Name: "Drainage Cleaning", Price: 449, Duration: "1-2 hours", Description: "Clear blocked drains", Icon: "wrench"},
		{Category: models.CategoryPlumber, Slug: "toilet-repair", Name: "Toilet Repair", Price: 299, Duration: "45 mins", Description: "Fix toilet flush & leaks", Icon: "wrench"},
		{Category: models.CategoryPlumber, Slug: "water-tank", Name: "Water Tank Cleaning", Price: 799, Duration: "2-3 hours", Description: "Complete tank cleaning", Icon: "wrench"},

		{Category: models.CategoryCarpenter, Slug: "furniture-assembly", Name: "Furniture Assembly", Price: 299, Duration: "1-2 hours", Description: "Assemble new furniture", Icon: "hammer"},
		{Category: models.CategoryCarpenter, Slug: "door-repair", Name: "Door Repair", Price: 349, Duration: "1 hour", Description: "Fix hinges, locks & frames", Icon: "hammer"},
		{Category: models.CategoryCarpenter, Slug: "cabinet-repair", Name: "Cabinet Repair", Price: 399, Duration: "1-2 hours", Description: "Fix shelves & cabinets", Icon: "hammer"},
		{Category: models.CategoryCarpenter, Slug: "bed-repair", Name: "Bed Repair", Price: 449, Duration: "1-2 hours", Description: "Fix bed frame & supports", Icon: "hammer"},
		{Category: models.CategoryCarpenter, Slug: "custom-work", Name: "Custom Woodwork", Price: 999, Duration: "3-4 hours", Description: "Custom furniture work", Icon: "hammer"},

		{Category: models.CategoryPainter, Slug: "wall-painting", Name: "Wall Painting (1 Room)", Price: 2999, Duration: "1 day", Description: "Complete room painting", Icon: "paintbrush"},
		{Category: models.CategoryPainter, Slug: "texture-painting", Name: "Texture Painting", Price: 1499, Duration: "4-5 hours", Description: "Decorative texture walls", Icon: "paintbrush"},
		{Category: models.CategoryPainter, Slug: "waterproofing", Name: "Waterproofing", Price: 1999, Duration: "1 day", Description: "Prevent water seepage", Icon: "paintbrush"},
		{Category: models.CategoryPainter, Slug: "touch-up", Name: "Touch Up Painting", Price: 599, Duration: "2-3 hours", Description: "Minor paint fixes", Icon: "paintbrush"},
		{Category: models.CategoryPainter, Slug: "exterior", Name: "Exterior Painting", Price: 4999, Duration: "2-3 days", Description: "Outdoor wall painting", Icon: "paintbrush"},

		{Category: models.CategoryElectrician, Slug: "fan-installation", Name: "Fan Installation", Price: 249, Duration: "30 mins", Description: "Install ceiling/wall fan", Icon: "zap"},
		{Category: models.CategoryElectrician, Slug: "switch-repair", Name: "Switch & Socket Repair", Price: 149, Duration: "20 mins", Description: "Replace switches & sockets", Icon: "zap"},
		{Category: models.CategoryElectrician, Slug: "wiring", Name: "Wiring Work", Price: 499, Duration: "1-2 hours", Description: "New wiring & repairs", Icon: "zap"},
		{Category: models.CategoryElectrician, Slug: "mcb-repair", Name: "MCB & Fuse Repair", Price: 299, Duration: "30 mins", Description: "Fix electrical panels", Icon: "zap"},
		{Category: models.CategoryElectrician, Slug: "inverter", Name: "Inverter Installation", Price: 699, Duration: "1-2 hours", Description: "Install & service inverters", Icon: "zap"},

		{Category: models.CategoryCleaner, Slug: "home-deep-clean", Name: "Home Deep Cleaning", Price: 1999, Duration: "4-5 hours", Description: "Full home deep clean", Icon: "sparkles"},
		{Category: models.CategoryCleaner, Slug: "bathroom-clean", Name: "Bathroom Cleaning", Price: 499, Duration: "1 hour", Description: "Deep bathroom clean", Icon: "sparkles"},
		{Category: models.CategoryCleaner, Slug: "kitchen-clean", Name: "Kitchen Cleaning", Price: 699, Duration: "1-2 hours", Description: "Degrease & sanitize kitchen", Icon: "sparkles"},
		{Category: models.CategoryCleaner, Slug: "sofa-clean", Name: "Sofa Cleaning", Price: 599, Duration: "1 hour", Description: "Shampoo & vacuum sofas", Icon: "sparkles"},

		{Category: models.CategoryACRepair, Slug: "ac-service", Name: "AC Service", Price: 499, Duration: "45 mins", Description: "Filter & coil cleaning", Icon: "snowflake"},
		{Category: models.CategoryACRepair, Slug: "ac-gas-refill", Name: "AC Gas Refill", Price: 2499, Duration: "1-2 hours", Description: "Refrigerant top-up", Icon: "snowflake"},
		{Category: models.CategoryACRepair, Slug: "ac-installation", Name: "AC Installation", Price: 1499, Duration: "2-3 hours", Description: "Split AC install/uninstall", Icon: "snowflake"},
		{Category: models.CategoryACRepair, Slug: "ac-repair", Name: "AC Repair", Price: 699, Duration: "1 hour", Description: "Diagnose & fix faults", Icon: "snowflake"},
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&services)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("seeded %d catalog services", result.RowsAffected)
	}
	return nil
}
