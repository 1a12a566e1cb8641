package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
)

// Item is a single-use consumable. The zero value means no item.
type Item uint8

const (
	NoItem Item = iota
	// Magnifier reveals the front shell to its user.
	Magnifier
	// Knife makes the user's next live shell deal 2 damage and forces a shot.
	Knife
	// Cigarettes restore one life, up to MaxLives.
	Cigarettes
	// Beer ejects the front shell without firing it.
	Beer
	// Handcuffs make the next participant in turn order skip one turn.
	Handcuffs
	// Adrenaline steals a random item from the opponent and uses it at once.
	Adrenaline
	// Phone privately reveals one shell behind the front.
	Phone
	// Inverter flips the front shell between live and blank.
	Inverter
)

// Catalog lists every item that can be drawn, in a stable order.
var Catalog = []Item{Magnifier, Knife, Cigarettes, Beer, Handcuffs, Adrenaline, Phone, Inverter}

type itemInfo struct {
	key   string
	name  string
	glyph string
}

var itemInfos = map[Item]itemInfo{
	Magnifier:  {"magnifier", "Magnifier", "🔍"},
	Knife:      {"knife", "Knife", "🔪"},
	Cigarettes: {"cigarettes", "Cigarettes", "🚬"},
	Beer:       {"beer", "Beer", "🍺"},
	Handcuffs:  {"handcuffs", "Handcuffs", "⛓"},
	Adrenaline: {"adrenaline", "Adrenaline", "💉"},
	Phone:      {"phone", "Phone", "📱"},
	Inverter:   {"inverter", "Inverter", "🖲"},
}

// String returns the item's wire name.
func (i Item) String() string {
	if info, ok := itemInfos[i]; ok {
		return info.key
	}
	return "none"
}

// Name returns the display name.
func (i Item) Name() string {
	if info, ok := itemInfos[i]; ok {
		return info.name
	}
	return "Nothing"
}

// Glyph returns the emoji shown next to the item in status text.
func (i Item) Glyph() string {
	return itemInfos[i].glyph
}

// Label is the glyph and display name together, e.g. "🍺 Beer".
func (i Item) Label() string {
	if i == NoItem {
		return i.Name()
	}
	return i.Glyph() + " " + i.Name()
}

// Valid reports whether the item is part of the catalog.
func (i Item) Valid() bool {
	_, ok := itemInfos[i]
	return ok
}

// ParseItem accepts a wire name, display name, glyph or label.
func ParseItem(s string) (Item, error) {
	s = strings.TrimSpace(s)
	for _, item := range Catalog {
		info := itemInfos[item]
		if strings.EqualFold(s, info.key) || strings.EqualFold(s, info.name) ||
			s == info.glyph || strings.EqualFold(s, item.Label()) {
			return item, nil
		}
	}
	return NoItem, fmt.Errorf("unknown item %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (i Item) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Item) UnmarshalText(text []byte) error {
	if len(text) == 0 || string(text) == "none" {
		*i = NoItem
		return nil
	}
	item, err := ParseItem(string(text))
	if err != nil {
		return err
	}
	*i = item
	return nil
}

// RandomItem draws one item from the catalog with replacement.
func RandomItem(rng *rand.Rand) Item {
	return Catalog[rng.IntN(len(Catalog))]
}

// DrawInitial returns InitialItems distinct items sampled without replacement.
func DrawInitial(rng *rand.Rand) []Item {
	perm := rng.Perm(len(Catalog))
	items := make([]Item, InitialItems)
	for i := range items {
		items[i] = Catalog[perm[i]]
	}
	return items
}
