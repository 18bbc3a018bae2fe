package retailer

import (
	"fmt"
	"sort"
)

// Constructor builds a parser bound to its environment.
type Constructor func(Env) Parser

// The registry is closed: a tag either maps to a constructor here or
// the retailer does not exist. Dispatch never evaluates names.
var registry = map[Tag]Constructor{
	TagADI:             newADI,
	TagAmazonCA:        newAmazonCA,
	TagAmazonDE:        newAmazonDE,
	TagAmazonES:        newAmazonES,
	TagAmazonFR:        newAmazonFR,
	TagAmazonGB:        newAmazonGB,
	TagAmazonUS:        newAmazonUS,
	TagASOS:            newASOS,
	TagAstonAndFincher: newAstonAndFincher,
	TagBaldacci:        newBaldacci,
	TagBSG:             newBSG,
	TagCultBeauty:      newCultBeauty,
	TagHaircareAust:    newHaircareAustralia,
	TagJCPenney:        newJCPenney,
	TagNewFlag:         newNewFlag,
	TagSallyBeautyMX:   newSallyBeautyMexico,
	TagSallyUKProDuo:   newSallyUKProDuo,
	TagSalonCentric:    newSalonCentric,
	TagSephora:         newSephora,
	TagTHG:             newTHG,
}

// Registered retailer tags. The tag is the storage path segment and the
// CLI argument.
const (
	TagADI             Tag = "adi"
	TagAmazonCA        Tag = "amazon_ca"
	TagAmazonDE        Tag = "amazon_de"
	TagAmazonES        Tag = "amazon_es"
	TagAmazonFR        Tag = "amazon_fr"
	TagAmazonGB        Tag = "amazon_gb"
	TagAmazonUS        Tag = "amazon_us"
	TagASOS            Tag = "asos"
	TagAstonAndFincher Tag = "aston_and_fincher"
	TagBaldacci        Tag = "baldacci"
	TagBSG             Tag = "bsg"
	TagCultBeauty      Tag = "cult_beauty"
	TagHaircareAust    Tag = "haircare_australia"
	TagJCPenney        Tag = "jc_penney"
	TagNewFlag         Tag = "new_flag"
	TagSallyBeautyMX   Tag = "sally_beauty_mexico"
	TagSallyUKProDuo   Tag = "sallyuk_produo"
	TagSalonCentric    Tag = "salon_centric"
	TagSephora         Tag = "sephora"
	TagTHG             Tag = "thg"
)

// New constructs the parser registered under tag.
func New(tag Tag, env Env) (Parser, error) {
	ctor, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("unknown retailer %q", tag)
	}
	return ctor(env), nil
}

// Known reports whether tag is registered.
func Known(tag Tag) bool {
	_, ok := registry[tag]
	return ok
}

// Tags lists the registered retailer tags in sorted order.
func Tags() []Tag {
	out := make([]Tag, 0, len(registry))
	for tag := range registry {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
