package domain

// Regions lists the Nigerian first-level subdivisions (ISO 3166-2:NG)
// accepted as listing origin and destination.
var Regions = map[string]string{
	"NG-AB": "Abia",
	"NG-AD": "Adamawa",
	"NG-AK": "Akwa Ibom",
	"NG-AN": "Anambra",
	"NG-BA": "Bauchi",
	"NG-BE": "Benue",
	"NG-BO": "Borno",
	"NG-BY": "Bayelsa",
	"NG-CR": "Cross River",
	"NG-DE": "Delta",
	"NG-EB": "Ebonyi",
	"NG-ED": "Edo",
	"NG-EK": "Ekiti",
	"NG-EN": "Enugu",
	"NG-FC": "Abuja Federal Capital Territory",
	"NG-GO": "Gombe",
	"NG-IM": "Imo",
	"NG-JI": "Jigawa",
	"NG-KD": "Kaduna",
	"NG-KE": "Kebbi",
	"NG-KN": "Kano",
	"NG-KO": "Kogi",
	"NG-KT": "Katsina",
	"NG-KW": "Kwara",
	"NG-LA": "Lagos",
	"NG-NA": "Nasarawa",
	"NG-NI": "Niger",
	"NG-OG": "Ogun",
	"NG-ON": "Ondo",
	"NG-OS": "Osun",
	"NG-OY": "Oyo",
	"NG-PL": "Plateau",
	"NG-RI": "Rivers",
	"NG-SO": "Sokoto",
	"NG-TA": "Taraba",
	"NG-YO": "Yobe",
	"NG-ZA": "Zamfara",
}

func IsRegion(code string) bool {
	_, ok := Regions[code]
	return ok
}
