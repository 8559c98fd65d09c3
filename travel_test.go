package arbor_test

import (
	"maps"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
)

// city is the state of the travel domain: where everyone is, what they carry
// and owe, and the distance table.
type city struct {
	Loc  map[string]string
	Cash map[string]int
	Owe  map[string]int
	Dist map[string]map[string]int
}

func (c city) Clone() city {
	return city{
		Loc:  maps.Clone(c.Loc),
		Cash: maps.Clone(c.Cash),
		Owe:  maps.Clone(c.Owe),
		Dist: c.Dist, // read-only
	}
}

func newCity(dist, cash int) city {
	return city{
		Loc:  map[string]string{"me": "home"},
		Cash: map[string]int{"me": cash},
		Owe:  map[string]int{},
		Dist: map[string]map[string]int{
			"home": {"park": dist},
			"park": {"home": dist},
		},
	}
}

var trip = domain.Params{domain.Text("me"), domain.Text("home"), domain.Text("park")}

func tripArgs(p domain.Params) (who, from, to string) {
	who, _ = p.Text(0)
	from, _ = p.Text(1)
	to, _ = p.Text(2)
	return who, from, to
}

func atOrigin(c city, p domain.Params) bool {
	who, from, _ := tripArgs(p)
	return c.Loc[who] == from
}

// travelDomain builds the classic travel domain. order lists the travel methods
// in priority order; nil means by_foot, by_taxi, by_foot_last_resort.
func travelDomain(order ...string) *domain.Domain[city] {
	b := dsl.New[city]("travel")
	text3 := []domain.Kind{domain.KindText, domain.KindText, domain.KindText}

	b.Operator("walk").Params(text3...).
		If(atOrigin).
		Then(func(c city, p domain.Params) city {
			who, _, to := tripArgs(p)
			c.Loc[who] = to
			return c
		})

	b.Operator("call_taxi").Params(text3...).
		Then(func(c city, p domain.Params) city {
			who, _, _ := tripArgs(p)
			c.Loc["taxi"] = c.Loc[who]
			return c
		})

	b.Operator("ride_taxi").Params(text3...).
		If(func(c city, p domain.Params) bool {
			who, from, _ := tripArgs(p)
			return c.Loc["taxi"] == c.Loc[who] && c.Loc[who] == from
		}).
		Then(func(c city, p domain.Params) city {
			who, from, to := tripArgs(p)
			c.Loc["taxi"] = to
			c.Loc[who] = to
			c.Owe[who] = 3 + c.Dist[from][to]
			return c
		})

	b.Operator("pay_driver").Params(text3...).
		If(func(c city, p domain.Params) bool {
			who, _, _ := tripArgs(p)
			return c.Cash[who] >= c.Owe[who]
		}).
		Then(func(c city, p domain.Params) city {
			who, _, _ := tripArgs(p)
			c.Cash[who] -= c.Owe[who]
			c.Owe[who] = 0
			return c
		})

	methods := map[string]func(*dsl.TaskBuilder[city]){
		"by_foot": func(tb *dsl.TaskBuilder[city]) {
			tb.Method("by_foot").
				If(func(c city, p domain.Params) bool {
					_, from, to := tripArgs(p)
					return c.Dist[from][to] <= 2 && atOrigin(c, p)
				}).
				Do("walk")
		},
		"by_taxi": func(tb *dsl.TaskBuilder[city]) {
			tb.Method("by_taxi").If(atOrigin).Do("call_taxi", "ride_taxi", "pay_driver")
		},
		"by_foot_last_resort": func(tb *dsl.TaskBuilder[city]) {
			tb.Method("by_foot_last_resort").If(atOrigin).Do("walk")
		},
	}
	if len(order) == 0 {
		order = []string{"by_foot", "by_taxi", "by_foot_last_resort"}
	}
	travel := b.Task("travel").Params(text3...)
	for _, name := range order {
		methods[name](travel)
	}

	return b.MustBuild()
}
