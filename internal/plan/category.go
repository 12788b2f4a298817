package plan

import "fmt"

// Category is a named, ordered collection of Items. Insertion order is
// preserved so schedule columns come out deterministically.
type Category struct {
	Name string
	// DefaultInflationRate is a creation-time convenience for items added
	// without their own rate; the engine never reads it.
	DefaultInflationRate float64
	Items                []Item
}

// AddItem appends an item to the category.
func (c *Category) AddItem(item Item) {
	c.Items = append(c.Items, item)
}

// RemoveItem removes an item by name. Returns true if found and removed.
func (c *Category) RemoveItem(name string) bool {
	for i, item := range c.Items {
		if item.Name == name {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Item returns the named item, or false when absent.
func (c *Category) Item(name string) (Item, bool) {
	for _, item := range c.Items {
		if item.Name == name {
			return item, true
		}
	}
	return Item{}, false
}

// Scenario holds one independent (settings, categories) pair under a plan.
type Scenario struct {
	Name        string
	Description string
	Settings    ProjectionSettings
	Categories  []Category
	Baseline    bool
}

// AddCategory appends a category; category names are unique within a scenario.
func (sc *Scenario) AddCategory(category Category) error {
	for _, existing := range sc.Categories {
		if existing.Name == category.Name {
			return fmt.Errorf("scenario %q already has category %q", sc.Name, category.Name)
		}
	}
	sc.Categories = append(sc.Categories, category)
	return nil
}

// RemoveCategory removes a category by name. Returns true if found and removed.
func (sc *Scenario) RemoveCategory(name string) bool {
	for i, category := range sc.Categories {
		if category.Name == name {
			sc.Categories = append(sc.Categories[:i], sc.Categories[i+1:]...)
			return true
		}
	}
	return false
}

// Category returns a pointer to the named category, or nil when absent.
func (sc *Scenario) Category(name string) *Category {
	for i := range sc.Categories {
		if sc.Categories[i].Name == name {
			return &sc.Categories[i]
		}
	}
	return nil
}

// ItemCount returns the total number of items across all categories.
func (sc *Scenario) ItemCount() int {
	count := 0
	for _, category := range sc.Categories {
		count += len(category.Items)
	}
	return count
}

// Copy returns a deep copy of the scenario under a new name. The copy is
// never a baseline.
func (sc *Scenario) Copy(newName, newDescription string) Scenario {
	copied := Scenario{
		Name:        newName,
		Description: newDescription,
		Settings:    sc.Settings,
		Baseline:    false,
	}
	for _, category := range sc.Categories {
		copiedCategory := Category{
			Name:                 category.Name,
			DefaultInflationRate: category.DefaultInflationRate,
		}
		for _, item := range category.Items {
			copiedCategory.Items = append(copiedCategory.Items, copyItem(item))
		}
		copied.Categories = append(copied.Categories, copiedCategory)
	}
	return copied
}

func copyItem(item Item) Item {
	copied := item
	if item.UnitCost != nil {
		cost := *item.UnitCost
		copied.UnitCost = &cost
	}
	if item.FrequencyPerYear != nil {
		freq := *item.FrequencyPerYear
		copied.FrequencyPerYear = &freq
	}
	if discrete, ok := item.Timing.(Discrete); ok {
		years := make([]int, len(discrete.Years))
		copy(years, discrete.Years)
		copied.Timing = Discrete{Years: years}
	}
	return copied
}
