package registration

import "time"

type Registration struct {
	Id  int
	Uid string
	// Name identifies a member; there is at most one registration per name.
	Name string
	// Item is what the member brings, empty if nothing was chosen.
	Item       string
	CoffeeOnly bool
	CreatedAt  time.Time
}

// SignUp is the member-submitted sign-up form.
type SignUp struct {
	Name         string
	SelectedItem string
	// CustomItem wins over SelectedItem and is added to the catalog.
	CustomItem string
	CoffeeOnly bool
}
