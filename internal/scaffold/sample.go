package scaffold

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"dbloada/internal/project"
	"dbloada/internal/reader"
	"dbloada/internal/textenc"

	"github.com/brianvoe/gofakeit/v6"
)

const (
	sampleCountries = 8
	sampleCities    = 20
	sampleCustomers = 25
	sampleCompanies = 6
	sampleOrders    = 40

	legacyEncoding = "windows-1252"
)

// Sample is a generated example data set: table specs plus the files they
// read, keyed by path relative to the project directory.
type Sample struct {
	Tables []project.TableSpec
	Files  map[string][]byte
}

// GenerateSample builds five related tables covering every source and
// identifier style a project can declare. The same seed yields the same
// data.
func GenerateSample(seed int64) (*Sample, error) {
	f := gofakeit.New(seed)
	s := &Sample{Files: map[string][]byte{}}

	countries := uniqueValues(sampleCountries, f.Country)
	rows := [][]string{{"Name", "Code"}}
	for _, c := range countries {
		rows = append(rows, []string{c, strings.ToUpper(f.LetterN(3))})
	}
	if err := s.addCSV("countries.csv", rows, ""); err != nil {
		return nil, err
	}

	cities := uniqueValues(sampleCities, f.City)
	rows = nil
	for _, c := range cities {
		rows = append(rows, []string{
			c,
			countries[f.Number(0, len(countries)-1)],
			strconv.Itoa(f.Number(5_000, 9_000_000)),
		})
	}
	if err := s.addCSV("cities.csv", rows, ""); err != nil {
		return nil, err
	}

	emails := make([]string, 0, sampleCustomers+1)
	rows = [][]string{{"First Name", "Last Name", "E-mail", "City"}}
	rows = append(rows, []string{"José", "Müller", "jose.muller@example.com", cities[0]})
	emails = append(emails, "jose.muller@example.com")
	for i := 0; i < sampleCustomers; i++ {
		email := f.Email()
		rows = append(rows, []string{f.FirstName(), f.LastName(), email, cities[f.Number(0, len(cities)-1)]})
		emails = append(emails, email)
	}
	if err := s.addCSV("legacy/customers.csv", rows, legacyEncoding); err != nil {
		return nil, err
	}

	companies := uniqueValues(sampleCompanies, f.Company)
	rows = [][]string{{"Company", "Founded"}}
	for _, c := range companies {
		rows = append(rows, []string{c, strconv.Itoa(f.Number(1900, 2024))})
	}
	if err := s.addCSV("sources/companies.txt", rows, ""); err != nil {
		return nil, err
	}

	rows = nil
	for i := 1; i <= sampleOrders; i++ {
		rows = append(rows, []string{
			strconv.Itoa(i),
			emails[f.Number(0, len(emails)-1)],
			companies[f.Number(0, len(companies)-1)],
			fmt.Sprintf("%.2f", f.Price(5, 500)),
		})
	}
	if err := s.addCSV("sources/orders.txt", rows, ""); err != nil {
		return nil, err
	}

	s.Tables = sampleTables()
	return s, nil
}

func (s *Sample) addCSV(path string, rows [][]string, encoding string) error {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write sample %s: %w", path, err)
	}
	if encoding == "" {
		s.Files[path] = []byte(b.String())
		return nil
	}
	raw, err := textenc.Encode(b.String(), encoding)
	if err != nil {
		return fmt.Errorf("failed to encode sample %s: %w", path, err)
	}
	s.Files[path] = raw
	return nil
}

func uniqueValues(n int, gen func() string) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for attempts := 0; len(out) < n && attempts < n*50; attempts++ {
		v := gen()
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func str(n int) project.ColumnType {
	return project.ColumnType{Kind: project.TypeString, MaxLength: n}
}

var int64Type = project.ColumnType{Kind: project.TypeInt64}

func sampleTables() []project.TableSpec {
	utf8 := project.DefaultCharacterEncoding
	return []project.TableSpec{
		{
			Name:        "countries",
			Description: "Countries, read from a CSV file with a header row",
			HasHeader:   true,
			Source:      project.FileSource{Filename: "countries.csv", CharacterEncoding: utf8},
			Columns: []project.ColumnSpec{
				{Name: "name", Description: "Country name", Identifier: project.NameIdentifier("Name"), Type: str(64)},
				{Name: "code", Description: "Three letter code", Identifier: project.NameIdentifier("Code"), Type: str(3)},
			},
		},
		{
			Name:        "cities",
			Description: "Cities, read from a CSV file without a header row",
			HasHeader:   false,
			Source:      project.FileSource{Filename: "cities.csv", CharacterEncoding: utf8},
			Columns: []project.ColumnSpec{
				{Name: "name", Description: "City name", Identifier: project.IndexIdentifier(0), Type: str(64)},
				{Name: "country", Description: "Country the city is in", Identifier: project.IndexIdentifier(1), Type: str(64)},
				{Name: "population", Description: "Inhabitants", Identifier: project.IndexIdentifier(2), Type: int64Type},
			},
			Relationships: []project.RelationshipSpec{
				{Name: "city-country", Description: "City belongs to a country", SourceColumn: "country", TargetTable: "countries", TargetColumn: "name"},
			},
		},
		{
			Name:        "customers",
			Description: "Customers, exported by a legacy system in Windows-1252",
			HasHeader:   true,
			Source:      project.FileSource{Filename: "legacy/customers.csv", CharacterEncoding: legacyEncoding},
			Columns: []project.ColumnSpec{
				{Name: "email", Description: "Contact address", Identifier: project.NameIdentifier("E-mail"), Type: str(128)},
				{Name: "first_name", Description: "Given name", Identifier: project.NameIdentifier("First Name"), Type: str(64)},
				{Name: "last_name", Description: "Family name", Identifier: project.NameIdentifier("Last Name"), Type: str(64)},
				{Name: "city", Description: "Home city", Identifier: project.NameIdentifier("City"), Type: str(64)},
			},
			Relationships: []project.RelationshipSpec{
				{Name: "customer-city", Description: "Customer lives in a city", SourceColumn: "city", TargetTable: "cities", TargetColumn: "name"},
			},
		},
		{
			Name:        "companies",
			Description: "Companies, captured from the standard output of a command",
			HasHeader:   true,
			Source: project.CmdSource{
				Command:           "cat",
				Args:              []string{"sources/companies.txt"},
				Stdout:            true,
				CharacterEncoding: utf8,
			},
			Columns: []project.ColumnSpec{
				{Name: "name", Description: "Company name", Identifier: project.NameIdentifier("Company"), Type: str(128)},
				{Name: "founded", Description: "Year founded", Identifier: project.NameIdentifier("Founded"), Type: int64Type},
			},
		},
		{
			Name:        "orders",
			Description: "Orders, written by a command to a temporary file",
			HasHeader:   false,
			Source: project.CmdSource{
				Command:           "cp",
				Args:              []string{"sources/orders.txt", reader.TempPathToken},
				CharacterEncoding: utf8,
			},
			Columns: []project.ColumnSpec{
				{Name: "id", Description: "Order number", Identifier: project.IndexIdentifier(0), Type: int64Type},
				{Name: "customer_email", Description: "Ordering customer", Identifier: project.IndexIdentifier(1), Type: str(128)},
				{Name: "company", Description: "Supplying company", Identifier: project.IndexIdentifier(2), Type: str(128)},
				{Name: "amount", Description: "Order total", Identifier: project.IndexIdentifier(3), Type: str(16)},
			},
			Relationships: []project.RelationshipSpec{
				{Name: "order-customer", Description: "Order placed by a customer", SourceColumn: "customer_email", TargetTable: "customers", TargetColumn: "email"},
				{Name: "order-company", Description: "Order fulfilled by a company", SourceColumn: "company", TargetTable: "companies", TargetColumn: "name"},
			},
		},
	}
}
