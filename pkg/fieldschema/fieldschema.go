// Package fieldschema holds the per-case-type intake field descriptors.
// Every application type maps to the list of dynamic fields the intake form
// renders when that case is chosen.
package fieldschema

import "sort"

// Option is one choice of a radio or checkbox field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldDef describes one dynamic intake field.
type FieldDef struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []Option `json:"options,omitempty"`
}

var yesNo = []Option{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}}

var registry = map[string][]FieldDef{
	"Hair Relaxer": {
		{Key: "attorney", Label: "Attorney retained?", Type: "radio"},
		{Key: "brandUsed", Label: "Brand of Hair Relaxer Used", Type: "text"},
		{Key: "startDate", Label: "Hair Relaxer Used Start Date", Type: "date"},
		{Key: "stopDate", Label: "Hair Relaxer Used Stop Date", Type: "date"},
		{Key: "usageFrequency", Label: "How often used (≥ 3×/yr for > 1 yr)", Type: "text"},
		{Key: "injuryType", Label: "Type of Injury", Type: "text"},
		{Key: "diagnosisDate", Label: "Diagnosis Date", Type: "date"},
		{Key: "healthcareFacility", Label: "Healthcare Provider / Facility", Type: "text"},
		{Key: "breastCancerOrLynch", Label: "Diagnosed with Breast Cancer / Lynch ?", Type: "radio"},
	},
	"Depo Provera": {
		{Key: "yearUsed", Label: "Year brand drug first used", Type: "text"},
		{Key: "usageDuration", Label: "Total years Depo-Provera used", Type: "text"},
		{Key: "shotFrequency", Label: "How often did you take a shot?", Type: "text"},
		{Key: "illness", Label: "Illness diagnosed with", Type: "text"},
		{Key: "symptoms", Label: "Symptoms", Type: "text"},
		{Key: "diagnosingDoctor", Label: "Doctor who diagnosed you", Type: "text"},
	},
	"Rideshare": {
		{Key: "name", Label: "Name", Type: "text", Required: true},
		{Key: "email", Label: "Email", Type: "email", Required: true},
		{Key: "phone", Label: "Phone", Type: "phone", Required: true},
		{Key: "dob", Label: "Date of Birth", Type: "date", Required: true},
		{Key: "address", Label: "Address", Type: "text", Required: true},
		{Key: "incidentDate", Label: "Date of Incident", Type: "date", Required: true},
		{Key: "typeOfAssault", Label: "Type of Assault", Type: "text", Required: true},
		{Key: "proofOfRide", Label: "Proof of Ride?", Type: "radio", Required: true, Options: yesNo},
		{Key: "attorney", Label: "Attorney retained?", Type: "radio", Required: true, Options: yesNo},
	},
	"Roundup": {
		{Key: "roundupType", Label: "Type of Roundup used (concentrate / pre-mix)", Type: "text"},
		{Key: "useDuration", Label: "Total years Roundup used (› 1 yr)", Type: "text"},
		{Key: "useStart", Label: "Use started (MM/YYYY)", Type: "text"},
		{Key: "nhlDiagnosed", Label: "Diagnosed with Non-Hodgkin’s Lymphoma?", Type: "radio"},
		{Key: "nhlDiagnosisDate", Label: "Date of NHL diagnosis", Type: "date"},
		{Key: "treatedForNHL", Label: "Received treatment for NHL?", Type: "radio"},
		{Key: "treatmentType", Label: "Treatment received (Chemo / Radiation / Both)", Type: "text"},
		{Key: "hospitalName", Label: "Hospital Name", Type: "text"},
		{Key: "hospitalAddress", Label: "Hospital Address", Type: "text"},
		{Key: "doctorName", Label: "Doctor Name", Type: "text"},
		{Key: "doctorDesignation", Label: "Doctor Designation", Type: "text"},
	},
	"NEC": {
		{Key: "qualifyingInjury", Label: "Qualifying Injury", Type: "text"},
		{Key: "childName", Label: "Child Name", Type: "text"},
		{Key: "childDOB", Label: "Child DOB", Type: "date"},
		{Key: "diagnoseDate", Label: "NEC Diagnose Date", Type: "date"},
		{Key: "weeksAtBirth", Label: "Weeks of pregnancy when gave birth", Type: "text"},
		{Key: "cowMilkFormula", Label: "Infant given cow-milk formula/fortifier?", Type: "radio"},
		{Key: "attorney", Label: "Attorney retained?", Type: "radio"},
	},
	"Roblox": {
		{Key: "name", Label: "Name", Type: "text", Required: true},
		{Key: "email", Label: "Email", Type: "email", Required: true},
		{Key: "phone", Label: "Phone", Type: "phone", Required: true},
		{Key: "dob", Label: "Date of Birth", Type: "date", Required: true},
		{Key: "address", Label: "Address", Type: "text", Required: true},
		{Key: "incidentDate", Label: "Date of Incident", Type: "date", Required: true},
		{Key: "robloxIdAndUser", Label: "Roblox ID and User Name", Type: "text", Required: true},
		{Key: "abuserRobloxId", Label: "Abuser’s Roblox ID", Type: "text", Required: true},
		{Key: "typeOfIssue", Label: "Type of Issue", Type: "text", Required: true},
		{Key: "otherAppsInvolved", Label: "Were there any other apps involved in the abuse?", Type: "text", Required: true},
		{Key: "otherAppId", Label: "ID of other app (if any)", Type: "text", Required: true},
		{Key: "attorney", Label: "Attorney retained?", Type: "radio", Required: true, Options: yesNo},
	},
	"Illinois Abuse": {
		{Key: "name", Label: "Name", Type: "text", Required: true},
		{Key: "email", Label: "Email", Type: "email", Required: true},
		{Key: "phone", Label: "Phone", Type: "phone", Required: true},
		{Key: "dob", Label: "Date of Birth", Type: "date", Required: true},
		{Key: "address", Label: "Address", Type: "text", Required: true},
		{Key: "incidentDate", Label: "Date of Incident", Type: "date", Required: true},
		{Key: "typeOfAbuse", Label: "Type of Abuse", Type: "text", Required: true},
		{Key: "locationOfIncident", Label: "Location / Facility Name", Type: "text", Required: true},
		{Key: "otherDetails", Label: "Additional Incident Details", Type: "textarea", Required: true},
		{Key: "attorney", Label: "Attorney retained?", Type: "radio", Required: true, Options: yesNo},
	},
	"Paraquat": {
		{Key: "exposureDate", Label: "Date of exposure to Paraquat", Type: "date"},
		{Key: "companyName", Label: "Company you worked for", Type: "text"},
		{Key: "exposuresPerYear", Label: "Times per year exposed (≥ 8 lifetime)", Type: "text"},
		{Key: "geneticTesting", Label: "Had genetic testing for Parkinson’s?", Type: "radio"},
		{Key: "parkinsonDxDate", Label: "Parkinson’s Date of Diagnosis", Type: "date"},
		{Key: "symptoms", Label: "Symptoms of Illness", Type: "text"},
		{Key: "doctorName", Label: "Diagnosing Doctor Name", Type: "text"},
		{Key: "hospital", Label: "Hospital Name and Address", Type: "text"},
	},
	"Talcum": {
		{Key: "usageYears", Label: "Start – End Year of Talcum Usage", Type: "text"},
		{Key: "diagnosis", Label: "Diagnosis", Type: "text"},
		{Key: "yearDx", Label: "Year of Dx", Type: "text"},
		{Key: "treatment", Label: "Treatment", Type: "text"},
		{Key: "attorney", Label: "Attorney retained?", Type: "radio"},
		{Key: "hospitalName", Label: "Hospital Name", Type: "text"},
	},
	"AFFF": {
		{Key: "phoneNumber", Label: "Phone Number", Type: "text"},
		{Key: "firstName", Label: "First Name", Type: "text"},
		{Key: "lastName", Label: "Last Name", Type: "text"},
		{Key: "exposedToAFFF", Label: "Were you or a loved one exposed to AFFF", Type: "radio"},
		{Key: "whenExposed", Label: "When were you or a loved one exposed to AFFF?", Type: "text"},
		{Key: "exposureFrequency", Label: "How many times were you exposed to AFFF over the last 10 years?", Type: "radio"},
		{Key: "firstExposureDate", Label: "When were you first exposed to AFFF?", Type: "date"},
		{Key: "wasFirefighter", Label: "Was the injured party a fire fighter?", Type: "radio"},
		{Key: "firefighterDuration", Label: "How long was the injured part a fire fighter?", Type: "text"},
		{Key: "fireStation", Label: "What station (City State and name) did they work at?", Type: "text"},
		{Key: "fireStationYears", Label: "What years did they work at the fire station?", Type: "text"},
		{Key: "lastExposureDate", Label: "When were you last exposed to AFFF?", Type: "date"},
		{Key: "callingOnBehalfOf", Label: "Are you calling on behalf of yourself, or someone else?", Type: "radio"},
		{Key: "claimantName", Label: "Claimant Name", Type: "text"},
		{Key: "claimantGender", Label: "Claimant Gender", Type: "radio"},
		{Key: "relationship", Label: "What is the relationship to the party you are calling on behalf of?", Type: "radio"},
		{Key: "isDeceased", Label: "IS THE AFFECTED PERSON DECEASED?", Type: "radio"},
		{Key: "dateOfDeath", Label: "Date of Death", Type: "text"},
		{Key: "diseaseType", Label: "Category A What type of disease did the injured party suffer from?", Type: "radio"},
		{Key: "diagnosisDate", Label: "Diagnosis Date", Type: "date"},
		{Key: "hasLegalRepresentation", Label: "DO YOU HAVE LEGAL REPRESENTATION?", Type: "radio"},
		{Key: "preferredContactMethod", Label: "What is your preferred method of contact?", Type: "radio"},
		{Key: "dateOfBirth", Label: "Date of Birth", Type: "date"},
		{Key: "email", Label: "Email", Type: "text"},
		{Key: "streetAddress", Label: "Street Address", Type: "text"},
		{Key: "city", Label: "City", Type: "text"},
		{Key: "state", Label: "State", Type: "text"},
		{Key: "zipCode", Label: "Zip Code", Type: "text"},
	},
}

// Get returns the field descriptors for an application type.
func Get(applicationType string) ([]FieldDef, bool) {
	defs, ok := registry[applicationType]
	return defs, ok
}

// Types returns all known application types in sorted order.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
