package stats

// CO2KgPerMeal is the rough landfill CO2 estimate per rescued meal.
const CO2KgPerMeal = 2.5

type Impact struct {
	TotalMeals        int     `json:"total_meals"`
	ActiveDonors      int     `json:"active_donors"`
	CommunitiesServed int     `json:"communities_served"`
	CO2Saved          float64 `json:"co2_saved"`
}

type DonationCounts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Claimed   int `json:"claimed"`
	Delivered int `json:"delivered"`
}

type OrderCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Assigned  int `json:"assigned"`
	InTransit int `json:"in_transit"`
	Delivered int `json:"delivered"`
}

type UserCounts struct {
	Total      int `json:"total"`
	Donors     int `json:"donors"`
	Recipients int `json:"recipients"`
	Drivers    int `json:"drivers"`
}

type Admin struct {
	Donations DonationCounts `json:"donations"`
	Orders    OrderCounts    `json:"orders"`
	Users     UserCounts     `json:"users"`
}
