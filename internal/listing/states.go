package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BrazilianStates maps UF codes to state names.
var BrazilianStates = map[string]string{
	"AC": "Acre",
	"AL": "Alagoas",
	"AP": "Amapá",
	"AM": "Amazonas",
	"BA": "Bahia",
	"CE": "Ceará",
	"DF": "Distrito Federal",
	"ES": "Espírito Santo",
	"GO": "Goiás",
	"MA": "Maranhão",
	"MT": "Mato Grosso",
	"MS": "Mato Grosso do Sul",
	"MG": "Minas Gerais",
	"PA": "Pará",
	"PB": "Paraíba",
	"PR": "Paraná",
	"PE": "Pernambuco",
	"PI": "Piauí",
	"RJ": "Rio de Janeiro",
	"RN": "Rio Grande do Norte",
	"RS": "Rio Grande do Sul",
	"RO": "Rondônia",
	"RR": "Roraima",
	"SC": "Santa Catarina",
	"SP": "São Paulo",
	"SE": "Sergipe",
	"TO": "Tocantins",
}

var stateByName = func() map[string]string {
	m := make(map[string]string, len(BrazilianStates))
	for code, name := range BrazilianStates {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// State is a UF code paired with its display name.
type State struct {
	Code string
	Name string
}

// StateName returns the name for a UF code in any case.
func StateName(code string) (string, bool) {
	name, ok := BrazilianStates[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// StateAbbreviation returns the UF code for a state name, ignoring case.
func StateAbbreviation(name string) (string, bool) {
	code, ok := stateByName[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// AllStates lists every state ordered by name using pt-BR collation.
func AllStates() []State {
	out := make([]State, 0, len(BrazilianStates))
	for code, name := range BrazilianStates {
		out = append(out, State{Code: code, Name: name})
	}
	c := collate.New(language.BrazilianPortuguese)
	sort.Slice(out, func(i, j int) bool {
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}
