package analysis

import (
	"fmt"
	"math/rand"
	"strings"
)

// churnCSV builds a Telco-shaped file. With separable set, churn is exactly
// tenure <= 20 and no tenure falls in (20, 36).
func churnCSV(n int, seed int64, separable bool) string {
	rng := rand.New(rand.NewSource(seed))
	services := []string{"DSL", "Fiber optic", "No"}

	var b strings.Builder
	b.WriteString("customerID,gender,tenure,InternetService,MonthlyCharges,TotalCharges,Churn\n")
	for i := 0; i < n; i++ {
		var tenure int
		if rng.Intn(2) == 0 {
			tenure = 1 + rng.Intn(20)
		} else {
			tenure = 36 + rng.Intn(37)
		}
		service := services[rng.Intn(len(services))]
		monthly := 20 + rng.Float64()*80
		total := fmt.Sprintf("%.2f", float64(tenure)*monthly)
		if i%50 == 7 {
			total = " "
		}

		churn := "No"
		if separable {
			if tenure <= 20 {
				churn = "Yes"
			}
		} else {
			p := 0.15
			if tenure <= 20 {
				p += 0.35
			}
			if service == "Fiber optic" {
				p += 0.2
			}
			if rng.Float64() < p {
				churn = "Yes"
			}
		}

		gender := "Female"
		if rng.Intn(2) == 1 {
			gender = "Male"
		}
		fmt.Fprintf(&b, "%04d-CUST,%s,%d,%s,%.2f,%s,%s\n", i, gender, tenure, service, monthly, total, churn)
	}
	return b.String()
}
