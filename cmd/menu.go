package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RanaTayyab/osu-api-manager/internal/api"
	"github.com/RanaTayyab/osu-api-manager/internal/osu"
)

// menuCmd represents the menu command
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactively choose which API data to check",
	Long: `The menu command presents the available API tasks and runs the chosen one.

The menu is shown again after every task until '0' is entered or the input ends.
A failed task prints its error and returns to the menu.`,
	RunE: MenuCmdRunE,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func MenuCmdRunE(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfigFromCLI()
	if err != nil {
		return err
	}

	m, err := CreateManager(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	return NewMenu(m, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
}

var menuOptions = []string{
	"Quit",
	"Beavers Bus",
	"Terms",
	"Search Text Books of a Term by a custom/any Date",
	"Get Details of a Vehicle and its Stops given a specified Route, with ETA and current destination",
}

// Menu is the interactive front end over an ApiManager
type Menu struct {
	manager *api.Manager
	flows   *osu.Client
	in      *bufio.Scanner
	out     io.Writer
}

func NewMenu(m *api.Manager, in io.Reader, out io.Writer) *Menu {
	return &Menu{manager: m, flows: osu.New(m), in: bufio.NewScanner(in), out: out}
}

// Run loops until the user quits or the input is exhausted.
func (m *Menu) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		m.showTasks()
		choice, ok := m.prompt("Enter your choice (0 or 1 or 2 or 3 or 4): ")
		if !ok {
			return m.in.Err()
		}

		var err error
		switch choice {
		case "0":
			fmt.Fprintln(m.out, "Exit")
			return nil
		case "1":
			err = m.beaverBus(ctx)
		case "2":
			err = m.terms(ctx)
		case "3":
			err = m.textbooks(ctx)
		case "4":
			err = m.routeReport(ctx)
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
			continue
		}

		if err != nil {
			slog.Debug("menu task failed", "choice", choice, "error", err)
			fmt.Fprintf(m.out, "Error: %v\n", err)
		}
	}
}

func (m *Menu) showTasks() {
	fmt.Fprintln(m.out, "Which API data do you want to check?")
	for i, option := range menuOptions {
		fmt.Fprintf(m.out, "%d. %s\n", i, option)
	}
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		fmt.Fprintln(m.out)
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) beaverBus(ctx context.Context) error {
	res, err := m.flows.BeaverBus(ctx)
	if err != nil {
		return err
	}
	return render(m.out, res)
}

func (m *Menu) terms(ctx context.Context) error {
	terms, err := m.flows.Terms(ctx, "")
	if err != nil {
		return err
	}
	for _, term := range terms {
		fmt.Fprintf(m.out, "Term: %s, Description: %s, Season: %s, Calendar Year: %s, Start: %s, End: %s\n",
			term.Code, term.Description, term.Season, term.CalendarYear, term.StartDate, term.EndDate)
	}
	return nil
}

func (m *Menu) textbooks(ctx context.Context) error {
	date, ok := m.prompt("Enter Date (yyyy-mm-dd): ")
	if !ok {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("invalid date %q, expected yyyy-mm-dd", date)
	}

	query, res, err := m.flows.TextbooksForDate(ctx, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Text books for %s %s:\n", query.Term, query.AcademicYear)
	return render(m.out, res)
}

func (m *Menu) routeReport(ctx context.Context) error {
	routeID, ok := m.prompt("Enter Route Number: ")
	if !ok {
		return nil
	}
	if routeID == "" {
		return fmt.Errorf("route number is required")
	}

	reports, err := m.flows.RouteReport(ctx, routeID)
	if err != nil {
		return err
	}
	for _, r := range reports {
		for _, problem := range r.Problems {
			fmt.Fprintf(m.out, "Error: %s\n", problem)
		}
		fmt.Fprintln(m.out, r.String())
	}
	return nil
}

// render prints a structured body as indented JSON and anything else as text.
func render(out io.Writer, res *api.Response) error {
	switch body := res.Body.(type) {
	case nil:
		fmt.Fprintf(out, "%d: %s\n", res.StatusCode, api.StatusDescription(res.StatusCode))
	case string:
		fmt.Fprintln(out, body)
	default:
		data, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}
	return nil
}
