package wizard

import (
	"fmt"
	"strings"

	"github.com/m3rciful/shopbot/internal/catalog"
)

// Draft is the product being assembled by the add-product dialogue. Each
// field is written only by its own step, so a field is set if and only if its
// step has completed.
type Draft struct {
	ID          string
	Name        string
	Category    string
	Price       float64
	Stock       int
	Description string
	PhotoURL    string
}

// Product converts the completed draft into a catalog row. New products are
// always active; the sheet owner deactivates rows by hand.
func (d *Draft) Product() catalog.Product {
	return catalog.Product{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Price:       d.Price,
		Stock:       d.Stock,
		Description: d.Description,
		PhotoURL:    d.PhotoURL,
		Active:      true,
	}
}

// Preview renders the draft for the confirmation step.
func (d *Draft) Preview() string {
	photo := d.PhotoURL
	if photo == "" {
		photo = "—"
	}
	var b strings.Builder
	b.WriteString("New product:\n\n")
	fmt.Fprintf(&b, "ID: %s\n", d.ID)
	fmt.Fprintf(&b, "Name: %s\n", d.Name)
	fmt.Fprintf(&b, "Category: %s\n", d.Category)
	fmt.Fprintf(&b, "Price: %.2f\n", d.Price)
	fmt.Fprintf(&b, "Stock: %d\n", d.Stock)
	fmt.Fprintf(&b, "Description: %s\n", d.Description)
	fmt.Fprintf(&b, "Photo: %s\n", photo)
	b.WriteString("\nAppend it to the catalog?")
	return b.String()
}
