package models

type Category string

const (
	Starters   Category = "Starters"
	Soups      Category = "Soups"
	MainCourse Category = "Main Course"
	Breads     Category = "Breads"
	Rice       Category = "Rice"
	Beverages  Category = "Beverages"
)

func (c Category) Valid() bool {
	switch c {
	case Starters, Soups, MainCourse, Breads, Rice, Beverages:
		return true
	}
	return false
}

// Price is in whole rupees.
type MenuItem struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Price        int64    `json:"price" yaml:"price"`
	Category     Category `json:"category" yaml:"category"`
	ImageURL     string   `json:"imageUrl" yaml:"image_url"`
	IsAvailable  bool     `json:"isAvailable" yaml:"available"`
	IsVegetarian bool     `json:"isVegetarian" yaml:"vegetarian"`
}

type CartItem struct {
	MenuItem
	Quantity int `json:"quantity"`
}

func (c CartItem) LineTotal() int64 {
	return c.Price * int64(c.Quantity)
}

type Table struct {
	ID         string `json:"id" yaml:"id"`
	Number     int    `json:"number" yaml:"number"`
	Seats      int    `json:"seats" yaml:"seats"`
	IsOccupied bool   `json:"isOccupied" yaml:"occupied"`
}
