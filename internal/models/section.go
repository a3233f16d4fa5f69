package models

import (
	"fmt"
	"strconv"
	"strings"
)

type Section string

const (
	Faculty        Section = "faculty"
	Labs           Section = "labs"
	Infrastructure Section = "infrastructure"
	Students       Section = "students"
	Financials     Section = "financials"
	Accreditation  Section = "accreditation"
)

// AllSections — фиксированный порядок, в нём же рисуем сетку загрузки и форму ревью.
var AllSections = []Section{Faculty, Labs, Infrastructure, Students, Financials, Accreditation}

type SectionDef struct {
	Key   Section
	Icon  string
	Title string
	Label string
	Desc  string
}

var sectionDefs = map[Section]SectionDef{
	Faculty:        {Faculty, "👨‍🏫", "Faculty Details", "Faculty", "Faculty list, qualifications, designations, experience, PhD details."},
	Labs:           {Labs, "🔬", "Laboratory Details", "Labs", "Lab names, departments, area in sqft, equipment count per lab."},
	Infrastructure: {Infrastructure, "🏫", "Infrastructure Details", "Infrastructure", "Classrooms, library books, computers, total area, hostel capacity."},
	Students:       {Students, "👨‍🎓", "Student Details", "Students", "Enrollment data, UG/PG count, programs offered list."},
	Financials:     {Financials, "💰", "Financial Details", "Financials", "Annual budget, fee structure (UG/PG fees)."},
	Accreditation:  {Accreditation, "🎓", "Accreditation Details", "Accreditation", "NAAC grade, NBA accredited programs, ISO 9001:2015 certification."},
}

func (s Section) Valid() bool {
	_, ok := sectionDefs[s]
	return ok
}

func (s Section) Def() SectionDef {
	if d, ok := sectionDefs[s]; ok {
		return d
	}
	return SectionDef{Key: s, Icon: "📄", Title: string(s), Label: string(s)}
}

func (s Section) Label() string { return s.Def().Label }

func ParseSection(v string) (Section, error) {
	s := Section(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown section %q", v)
	}
	return s, nil
}

type FacultyMember struct {
	Name            string  `json:"name"`
	Dept            string  `json:"dept"`
	Qualification   string  `json:"qualification"`
	Designation     string  `json:"designation,omitempty"`
	ExperienceYears float64 `json:"experience_years"`
}

type Lab struct {
	Name           string  `json:"name"`
	Dept           string  `json:"dept"`
	AreaSqft       float64 `json:"area_sqft"`
	EquipmentCount int     `json:"equipment_count"`
}

type FeeStructure struct {
	UGFee float64 `json:"ug_fee"`
	PGFee float64 `json:"pg_fee"`
}

// SectionData — извлечённые ИИ поля. Схема зависит от раздела, поэтому все поля опциональны.
type SectionData struct {
	TotalFaculty    int             `json:"total_faculty,omitempty"`
	FacultyPhDCount int             `json:"faculty_phd_count,omitempty"`
	RequiredFaculty int             `json:"required_faculty,omitempty"`
	FacultyDetails  []FacultyMember `json:"faculty_details,omitempty"`

	TotalLabs  int   `json:"total_labs,omitempty"`
	LabDetails []Lab `json:"lab_details,omitempty"`

	TotalClassrooms int     `json:"total_classrooms,omitempty"`
	LibraryBooks    int     `json:"library_books,omitempty"`
	ComputerCount   int     `json:"computer_count,omitempty"`
	TotalAreaSqft   float64 `json:"total_area_sqft,omitempty"`
	HostelCapacity  int     `json:"hostel_capacity,omitempty"`

	TotalStudents int      `json:"total_students,omitempty"`
	UGStudents    int      `json:"ug_students,omitempty"`
	PGStudents    int      `json:"pg_students,omitempty"`
	Programs      []string `json:"programs_offered,omitempty"`

	AnnualBudget float64       `json:"annual_budget,omitempty"`
	FeeStructure *FeeStructure `json:"fee_structure,omitempty"`

	NAACGrade    string `json:"naac_grade,omitempty"`
	NBAPrograms  any    `json:"nba_programs,omitempty"`
	ISOCertified bool   `json:"iso_certified,omitempty"`
}

// Brief — однострочная сводка по разделу для таблиц.
func (d SectionData) Brief(s Section) string {
	switch s {
	case Faculty:
		return fmt.Sprintf("Faculty: %d, PhD: %d", d.TotalFaculty, d.FacultyPhDCount)
	case Labs:
		return fmt.Sprintf("Labs: %d", d.TotalLabs)
	case Students:
		return fmt.Sprintf("Students: %d", d.TotalStudents)
	case Infrastructure:
		return fmt.Sprintf("Classrooms: %d, Lib: %d", d.TotalClassrooms, d.LibraryBooks)
	case Financials:
		return fmt.Sprintf("Budget: ₹%sL", strconv.FormatFloat(d.AnnualBudget, 'f', -1, 64))
	case Accreditation:
		grade := d.NAACGrade
		if grade == "" {
			grade = "—"
		}
		iso := "No"
		if d.ISOCertified {
			iso = "Yes"
		}
		return fmt.Sprintf("NAAC: %s, ISO: %s", grade, iso)
	}
	return ""
}

// NBA — nba_programs приходит то строкой, то списком.
func (d SectionData) NBA() string {
	switch v := d.NBAPrograms.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, it := range v {
			parts = append(parts, fmt.Sprint(it))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
