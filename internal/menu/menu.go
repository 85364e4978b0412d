package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"MiniCatalog/internal/catalog"
)

// Catalog is the slice of catalog.Store the menu drives.
type Catalog interface {
	Load(ctx context.Context) ([]catalog.Product, error)
	Save(ctx context.Context) error
	Add(p catalog.Product) error
	FindByID(id int64) (catalog.Product, bool)
	Delete(id int64) int
	List() []catalog.Product
}

// Names and descriptions are free text; one input line may be this long.
const maxLineBytes = 16 << 20

const (
	choiceList = iota + 1
	choiceFind
	choiceAdd
	choiceDelete
	choiceSave
	choiceExit
)

const banner = `
--- Product Management Menu ---
1. Display the list of products
2. Search for a product by ID
3. Add a new product
4. Delete a product by ID
5. Save products to file
6. Exit
`

type Menu struct {
	Store Catalog
	// Location names the snapshot target in the save confirmation.
	Location string

	in  *bufio.Scanner
	out io.Writer
}

func New(store Catalog, location string, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		Store:    store,
		Location: location,
		in:       newScanner(in),
		out:      out,
	}
}

func newScanner(in io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return sc
}

// Run loads the catalog once, then serves menu choices until the operator
// exits or input ends. Store failures are printed, never returned.
func (m *Menu) Run(ctx context.Context) error {
	if _, err := m.Store.Load(ctx); err != nil {
		m.printf("Error loading products: %v\n", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printf("%s", banner)
		line, ok := m.prompt("Enter your choice: ")
		if !ok {
			m.printf("\nExiting...\n")
			return m.in.Err()
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			m.printf("Invalid choice.\n")
			continue
		}

		switch choice {
		case choiceList:
			m.list()
		case choiceFind:
			m.find()
		case choiceAdd:
			m.add()
		case choiceDelete:
			m.delete()
		case choiceSave:
			m.save(ctx)
		case choiceExit:
			m.printf("Exiting...\n")
			return nil
		default:
			m.printf("Invalid choice.\n")
		}
	}
}

func (m *Menu) list() {
	products := m.Store.List()
	if len(products) == 0 {
		m.printf("No products.\n")
		return
	}
	for _, p := range products {
		m.printf("%s\n", p)
	}
}

func (m *Menu) find() {
	id, ok := m.promptInt("Enter ID: ", 64)
	if !ok {
		return
	}

	if p, found := m.Store.FindByID(id); found {
		m.printf("%s\n", p)
		return
	}
	m.printf("Product not found.\n")
}

func (m *Menu) add() {
	var p catalog.Product
	var ok bool

	if p.ID, ok = m.promptInt("ID: ", 64); !ok {
		return
	}
	if p.Name, ok = m.prompt("Name: "); !ok {
		return
	}
	if p.Brand, ok = m.prompt("Brand: "); !ok {
		return
	}
	if p.Price, ok = m.promptFloat("Price: "); !ok {
		return
	}
	if p.Description, ok = m.prompt("Description: "); !ok {
		return
	}
	stock, ok := m.promptInt("Stock: ", 32)
	if !ok {
		return
	}
	p.Stock = int32(stock)

	if err := m.Store.Add(p); err != nil {
		m.printf("Error adding product: %v\n", err)
		return
	}
	m.printf("Product added.\n")
}

func (m *Menu) delete() {
	id, ok := m.promptInt("Enter ID to delete: ", 64)
	if !ok {
		return
	}

	n := m.Store.Delete(id)
	m.printf("%d product(s) deleted.\n", n)
}

func (m *Menu) save(ctx context.Context) {
	if err := m.Store.Save(ctx); err != nil {
		m.printf("Error saving products: %v\n", err)
		return
	}
	m.printf("Products successfully saved to %s\n", m.Location)
}

// prompt writes label and returns the next input line with the trailing
// newline stripped. ok is false at end of input.
func (m *Menu) prompt(label string) (string, bool) {
	m.printf("%s", label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimRight(m.in.Text(), "\r"), true
}

func (m *Menu) promptInt(label string, bits int) (int64, bool) {
	line, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(line), 10, bits)
	if err != nil {
		m.printf("Invalid number.\n")
		return 0, false
	}
	return v, true
}

func (m *Menu) promptFloat(label string) (float64, bool) {
	line, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		m.printf("Invalid number.\n")
		return 0, false
	}
	return v, true
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}
