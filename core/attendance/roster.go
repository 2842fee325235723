package attendance

import (
	"fmt"
	"regexp"
	"strings"
)

var spacesRegex = regexp.MustCompile(`\s+`)

var rosterNames = []string{
	"Mahalingan M", "Manasa M", "Manosh kailas S G", "MAYAKRISHNA.M", "Mehanath M",
	"Melfina A", "Mithunalakshmi N", "Mohamed Milfer M", "Mohan Raj C", "Monisha K",
	"Mouleeswaran.V", "Naveen G", "Nikesh s", "Pallavi C", "Paramesh",
	"Pavan Robin Singh R", "Pooja shree S", "Pranitha B", "PRIYADHARSHAN R", "RAKSHITHA M",
	"Rangan Kesavan", "Rithika S", "Roobini N", "M.rubeshravan", "Rushiath S N",
	"R sai kshitij", "Sanjay.s", "Saranya S", "Sasikumar R", "Semsto C Simion",
	"Shanmuga Priya C", "Shree Dharshan B S", "Sivajothi A", "Sivasangkari k", "Sonali D",
	"M Sri Nahul", "SRI SUDHAN KS", "Sri Sugisha K", "Sridhar B", "Subakarthikeyan",
	"Vishwa S", "Yakdthesh KA", "YOGESH S", "YUKESH B", "Ramkumar M",
	"RAVIPRASATH K", "Sanjay Kumar s", "Santhosh kumar D", "Suresh Kumar R",
}

// RosterEmail derives the institutional e-mail of a roster name.
func RosterEmail(name string) string {
	return strings.ToLower(spacesRegex.ReplaceAllString(name, ".")) + "@lumina.edu"
}

// Roster returns the seeded student roster.
func Roster() []Student {
	students := make([]Student, 0, len(rosterNames))
	for idx, name := range rosterNames {
		students = append(students, Student{
			ID:    fmt.Sprintf("std-%d", idx),
			Name:  name,
			Email: RosterEmail(name),
		})
	}
	return students
}
