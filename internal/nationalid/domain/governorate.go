package domain

import "sort"

// Governorate is an administrative region of birth registration.
type Governorate struct {
	Code string
	Name string
}

// governorates maps the two-digit governorate code to its name.
var governorates = map[string]string{
	"01": "Cairo",
	"02": "Alexandria",
	"03": "Port Said",
	"04": "Suez",
	"11": "Damietta",
	"12": "Dakahlia",
	"13": "Sharqia",
	"14": "Qalyubia",
	"15": "Kafr El Sheikh",
	"16": "Gharbia",
	"17": "Monufia",
	"18": "Beheira",
	"19": "Ismailia",
	"21": "Giza",
	"22": "Beni Suef",
	"23": "Fayoum",
	"24": "Minya",
	"25": "Asyut",
	"26": "Sohag",
	"27": "Qena",
	"28": "Aswan",
	"29": "Luxor",
	"31": "Red Sea",
	"32": "New Valley",
	"33": "Matrouh",
	"34": "North Sinai",
	"35": "South Sinai",
	"88": "Foreigner",
}

// LookupGovernorate returns the name registered for code.
func LookupGovernorate(code string) (string, bool) {
	name, ok := governorates[code]
	return name, ok
}

// Governorates returns every known governorate ordered by code.
func Governorates() []Governorate {
	result := make([]Governorate, 0, len(governorates))
	for code, name := range governorates {
		result = append(result, Governorate{Code: code, Name: name})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})
	return result
}
