// Package drinks contains the drinks menu model and its persistence layer.
package drinks

// Ingredient is a single part of a drink's recipe
type Ingredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// Recipe is the ordered list of ingredients of a drink
type Recipe []Ingredient

// Drink is a drink on the menu, with its full recipe
type Drink struct {
	ID     int64  `json:"id" gorm:"primaryKey"`
	Title  string `json:"title" gorm:"uniqueIndex;not null"`
	Recipe Recipe `json:"recipe" gorm:"serializer:json;type:jsonb;not null"`
}

// ShortIngredient is the abbreviated representation of an ingredient, which
// omits its name
type ShortIngredient struct {
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// ShortDrink is the abbreviated representation of a drink, safe to show to
// unauthenticated users
type ShortDrink struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// Short returns the abbreviated representation of the drink
func (d Drink) Short() ShortDrink {
	recipe := make([]ShortIngredient, len(d.Recipe))
	for i, ing := range d.Recipe {
		recipe[i] = ShortIngredient{
			Color: ing.Color,
			Parts: ing.Parts,
		}
	}
	return ShortDrink{
		ID:     d.ID,
		Title:  d.Title,
		Recipe: recipe,
	}
}
