package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/query"
	"moneytracker/internal/services"
)

const usage = `Usage: moneytracker-cli [--lang LANG] <command> [flags] [args]

Commands:
  list        show one page of transactions
  summary     income, expenses and balance
  charts      monthly and per-category series
  categories  known categories
  add         record a transaction
  edit ID     change fields of a transaction
  delete ID   remove a transaction
  import FILE replace everything with a JSON export ("-" reads stdin)
  export      write the collection as JSON
  seed        replace everything with sample data
  reset       remove every transaction
  settings    show currency and theme
  currency C  select the display currency (ISO 4217)
  theme [T]   show, set (light, dark) or toggle the theme
`

var errUsage = errors.New("invalid usage")

type command func(ctx context.Context, args []string) error

type runner struct {
	tracker *services.Tracker
	tr      *i18n.Translator
	in      *bufio.Reader
	out     io.Writer
}

func newRunner(tracker *services.Tracker, in io.Reader, out io.Writer) *runner {
	return &runner{
		tracker: tracker,
		tr:      i18n.New(),
		in:      bufio.NewReader(in),
		out:     out,
	}
}

func (r *runner) commands() map[string]command {
	return map[string]command{
		"list":       r.list,
		"summary":    r.summary,
		"charts":     r.charts,
		"categories": r.categories,
		"add":        r.add,
		"edit":       r.edit,
		"delete":     r.delete,
		"import":     r.importFile,
		"export":     r.export,
		"seed":       r.seed,
		"reset":      r.reset,
		"settings":   r.settings,
		"currency":   r.currency,
		"theme":      r.theme,
	}
}

// run parses global flags and dispatches to the named command.
func (r *runner) run(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("moneytracker-cli", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	lang := fs.String("lang", "", "label language (en, fr)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *lang != "" {
		r.tr = i18n.New(*lang)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(r.out, usage)
		return errUsage
	}
	cmd, ok := r.commands()[rest[0]]
	if !ok {
		fmt.Fprint(r.out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
	}
	return cmd(ctx, rest[1:])
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

type filterFlags struct {
	typ      string
	category string
	from     string
	to       string
	search   string
	page     int
}

func addFilterFlags(fs *pflag.FlagSet) *filterFlags {
	f := &filterFlags{}
	fs.StringVar(&f.typ, "type", "all", "all, income or expense")
	fs.StringVar(&f.category, "category", "", "exact category, case-insensitive")
	fs.StringVar(&f.from, "from", "", "first date, YYYY-MM-DD")
	fs.StringVar(&f.to, "to", "", "last date, YYYY-MM-DD")
	fs.StringVar(&f.search, "search", "", "text contained in the note")
	fs.IntVar(&f.page, "page", 1, "page number")
	return f
}

func (f *filterFlags) apply(t *services.Tracker) {
	t.SetCriteria(query.NewCriteria(f.typ, f.category, f.from, f.to, f.search))
	if f.page > 1 {
		t.GoToPage(f.page)
	}
}

func (r *runner) money(m core.Money) string {
	return r.tr.FormatMoney(m, r.tracker.Settings().Currency)
}

func (r *runner) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	filters := addFilterFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	filters.apply(r.tracker)

	view := r.tracker.View(ctx, r.tr)
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\tID\n",
		r.tr.T("date_col", nil), r.tr.T("type_col", nil), r.tr.T("category_col", nil),
		r.tr.T("note_col", nil), r.tr.T("amount_col", nil))
	for _, tx := range view.Page.Items {
		label := r.tr.T("expenses", nil)
		sign := "-"
		if tx.IsIncome() {
			label, sign = r.tr.T("income", nil), "+"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%s\t%s\n",
			tx.Date, label, tx.Category, tx.Note, sign, r.money(tx.Amount), tx.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%d/%d  %s\n", view.Page.Number, view.Page.PageCount, view.CountLabel)
	return nil
}

func (r *runner) summary(ctx context.Context, args []string) error {
	fs := newFlagSet("summary")
	filters := addFilterFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	filters.apply(r.tracker)

	totals := r.tracker.Summary(ctx)
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", r.tr.T("income", nil), r.money(totals.Income))
	fmt.Fprintf(w, "%s\t%s\n", r.tr.T("expenses", nil), r.money(totals.Expense))
	fmt.Fprintf(w, "%s\t%s\n", r.tr.T("balance", nil), r.money(totals.Balance))
	return w.Flush()
}

func (r *runner) charts(ctx context.Context, args []string) error {
	fs := newFlagSet("charts")
	filters := addFilterFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	filters.apply(r.tracker)

	view := r.tracker.View(ctx, r.tr)
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, r.tr.T("monthly_income_vs_expense", nil))
	for i, label := range view.Monthly.Labels {
		fmt.Fprintf(w, "%s\t%s\t%s\n", label, r.money(view.Monthly.Income[i]), r.money(view.Monthly.Expense[i]))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.tr.T("expense_by_category", nil))
	for i, label := range view.Categories.Labels {
		fmt.Fprintf(w, "%s\t%s\n", label, r.money(view.Categories.Values[i]))
	}
	return w.Flush()
}

func (r *runner) categories(ctx context.Context, args []string) error {
	if err := parse(newFlagSet("categories"), args); err != nil {
		return err
	}
	for _, c := range r.tracker.CategoryOptions(ctx) {
		fmt.Fprintln(r.out, c)
	}
	return nil
}

func (r *runner) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	in := services.NewTransaction{}
	fs.StringVar(&in.Type, "type", string(core.Expense), "income or expense")
	fs.StringVar(&in.Amount, "amount", "", "non-negative amount, dot or comma decimals")
	fs.StringVar(&in.Category, "category", "", "category")
	fs.StringVar(&in.Note, "note", "", "free text note")
	fs.StringVar(&in.Date, "date", "", "YYYY-MM-DD, today when empty")
	if err := parse(fs, args); err != nil {
		return err
	}

	tx, outcome := r.tracker.Add(ctx, in)
	if err := outcomeError("add", outcome); err != nil {
		return err
	}
	fmt.Fprintln(r.out, tx.ID)
	return nil
}

func (r *runner) edit(ctx context.Context, args []string) error {
	fs := newFlagSet("edit")
	typ := fs.String("type", "", "income or expense")
	amount := fs.String("amount", "", "non-negative amount")
	category := fs.String("category", "", "category")
	note := fs.String("note", "", "free text note")
	date := fs.String("date", "", "YYYY-MM-DD")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: edit takes exactly one transaction id", errUsage)
	}

	var patch services.TransactionPatch
	changed := func(name string, v *string) *string {
		if fs.Changed(name) {
			return v
		}
		return nil
	}
	patch.Type = changed("type", typ)
	patch.Amount = changed("amount", amount)
	patch.Category = changed("category", category)
	patch.Note = changed("note", note)
	patch.Date = changed("date", date)

	_, outcome := r.tracker.Edit(ctx, fs.Arg(0), patch)
	return outcomeError("edit", outcome)
}

func (r *runner) delete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: delete takes exactly one transaction id", errUsage)
	}
	return outcomeError("delete", r.tracker.Delete(ctx, fs.Arg(0)))
}

func (r *runner) importFile(ctx context.Context, args []string) error {
	fs := newFlagSet("import")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: import takes one file, or - for stdin", errUsage)
	}

	var (
		data []byte
		err  error
	)
	if name := fs.Arg(0); name == "-" {
		data, err = io.ReadAll(r.in)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}

	report, outcome := r.tracker.Import(ctx, data)
	if outcome != services.Applied {
		return fmt.Errorf("import rejected: %w", services.ErrMalformedImport)
	}
	fmt.Fprintf(r.out, "imported %d of %d records, dropped %d\n", report.Imported, report.Received, report.Dropped)
	for _, d := range report.Defects {
		fmt.Fprintf(r.out, "  #%d %s: %s\n", d.Index, d.Field, d.Problem)
	}
	return nil
}

func (r *runner) export(ctx context.Context, args []string) error {
	fs := newFlagSet("export")
	output := fs.StringP("output", "o", ".", "file or directory to write, - for stdout")
	if err := parse(fs, args); err != nil {
		return err
	}

	file, err := r.tracker.Export(ctx)
	if err != nil {
		return err
	}
	if *output == "-" {
		_, err := r.out.Write(append(file.Data, '\n'))
		return err
	}

	path := *output
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, file.Name)
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintln(r.out, path)
	return nil
}

func (r *runner) seed(ctx context.Context, args []string) error {
	if err := parse(newFlagSet("seed"), args); err != nil {
		return err
	}
	n, _ := r.tracker.Seed(ctx)
	fmt.Fprintln(r.out, r.tr.CountLabel(n))
	return nil
}

func (r *runner) reset(ctx context.Context, args []string) error {
	fs := newFlagSet("reset")
	yes := fs.BoolP("yes", "y", false, "skip the confirmation prompt")
	if err := parse(fs, args); err != nil {
		return err
	}

	confirm := services.Confirmer(services.ConfirmFunc(r.prompt))
	if *yes {
		confirm = services.Confirmed
	}
	if r.tracker.Reset(ctx, confirm) == services.Cancelled {
		fmt.Fprintln(r.out, "reset cancelled")
	}
	return nil
}

// prompt asks the localized y/N question on the runner's streams.
func (r *runner) prompt(context.Context, string) bool {
	fmt.Fprintf(r.out, "%s [y/N] ", r.tr.T("confirm_clear", nil))
	answer, err := r.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (r *runner) settings(_ context.Context, args []string) error {
	if err := parse(newFlagSet("settings"), args); err != nil {
		return err
	}
	s := r.tracker.Settings()
	fmt.Fprintf(r.out, "currency\t%s\ntheme\t%s\nlanguages\t%s\n", s.Currency, s.Theme, strings.Join(sortedLanguages(), ", "))
	return nil
}

func (r *runner) currency(ctx context.Context, args []string) error {
	fs := newFlagSet("currency")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: currency takes one ISO 4217 code", errUsage)
	}
	s, outcome, err := r.tracker.SetCurrency(ctx, fs.Arg(0))
	if outcome != services.Applied {
		return fmt.Errorf("%s: %w", r.tr.T("invalid_currency", nil), err)
	}
	fmt.Fprintln(r.out, s.Currency)
	return nil
}

func (r *runner) theme(ctx context.Context, args []string) error {
	fs := newFlagSet("theme")
	if err := parse(fs, args); err != nil {
		return err
	}

	var s core.Settings
	switch fs.Arg(0) {
	case "":
		s = r.tracker.Settings()
	case "toggle":
		s = r.tracker.ToggleTheme(ctx)
	default:
		var err error
		if s, _, err = r.tracker.SetTheme(ctx, fs.Arg(0)); err != nil {
			return err
		}
	}
	fmt.Fprintln(r.out, s.Theme)
	return nil
}

func outcomeError(op string, outcome services.Outcome) error {
	switch outcome {
	case services.Applied:
		return nil
	case services.NotFound:
		return fmt.Errorf("%s: transaction not found", op)
	default:
		return fmt.Errorf("%s: %s", op, outcome)
	}
}

func sortedLanguages() []string {
	langs := append([]string(nil), i18n.Languages()...)
	sort.Strings(langs)
	return langs
}
