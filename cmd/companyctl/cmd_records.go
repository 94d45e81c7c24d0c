package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gartstein/companydir/pkg/client"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// list flags
	listSearch  string
	listMinSize int
	listMaxSize int
	outputJSON  bool

	// create/update flags
	fieldName     string
	fieldIndustry string
	fieldLocation string
	fieldSize     int
	fieldFounded  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies",
	Long: `Lists companies, optionally filtered.

Examples:
  companyctl list
  companyctl list --search acme
  companyctl list --min-size 10 --max-size 500 --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one company",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a company",
	Long: `Creates a company. Name and location are required by the gateway;
industry defaults to General.

Example:
  companyctl create --name Acme --location NY --size 10 --founded 2001`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a company",
	Long: `Updates only the fields whose flags are given.

Example:
  companyctl update 65f0c0ffee --location Boston`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a company",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func registerRecordCommands() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive match on name, industry or location")
	listCmd.Flags().IntVar(&listMinSize, "min-size", 0, "Minimum employee count")
	listCmd.Flags().IntVar(&listMaxSize, "max-size", 0, "Maximum employee count")

	for _, c := range []*cobra.Command{listCmd, getCmd, createCmd, updateCmd} {
		c.Flags().BoolVarP(&outputJSON, "json", "j", false, "Print JSON instead of a table")
	}

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVar(&fieldName, "name", "", "Company name")
		c.Flags().StringVar(&fieldIndustry, "industry", "", "Industry")
		c.Flags().StringVar(&fieldLocation, "location", "", "Location")
		c.Flags().IntVar(&fieldSize, "size", 0, "Employee count")
		c.Flags().IntVar(&fieldFounded, "founded", 0, "Year founded")
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	opts := client.ListOptions{Search: listSearch}
	if cmd.Flags().Changed("min-size") {
		opts.MinSize = &listMinSize
	}
	if cmd.Flags().Changed("max-size") {
		opts.MaxSize = &listMaxSize
	}

	companies, err := c.List(ctx, opts)
	if err != nil {
		logger.Error("list failed", zap.Error(err))
		return err
	}
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), companies)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(companies))
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	company, err := c.Get(ctx, args[0])
	if err != nil {
		return err
	}
	return printCompany(cmd.OutOrStdout(), company)
}

func runCreate(cmd *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	company, err := c.Create(ctx, inputFromFlags(cmd))
	if err != nil {
		logger.Error("create failed", zap.Error(err))
		return err
	}
	return printCompany(cmd.OutOrStdout(), company)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	in := inputFromFlags(cmd)
	if in == (client.CompanyInput{}) {
		return fmt.Errorf("nothing to update: pass at least one of --name, --industry, --location, --size, --founded")
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	company, err := c.Update(ctx, args[0], in)
	if err != nil {
		logger.Error("update failed", zap.String("id", args[0]), zap.Error(err))
		return err
	}
	return printCompany(cmd.OutOrStdout(), company)
}

func runDelete(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := c.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

// inputFromFlags sets only the fields whose flags were given.
func inputFromFlags(cmd *cobra.Command) client.CompanyInput {
	var in client.CompanyInput
	flags := cmd.Flags()
	if flags.Changed("name") {
		in.Name = &fieldName
	}
	if flags.Changed("industry") {
		in.Industry = &fieldIndustry
	}
	if flags.Changed("location") {
		in.Location = &fieldLocation
	}
	if flags.Changed("size") {
		in.Size = &fieldSize
	}
	if flags.Changed("founded") {
		in.Founded = &fieldFounded
	}
	return in
}

func printCompany(w io.Writer, c *client.Company) error {
	if outputJSON {
		return writeJSON(w, c)
	}
	_, err := fmt.Fprintln(w, renderTable([]client.Company{*c}))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(companies []client.Company) string {
	header := lipgloss.NewStyle().Bold(true)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "INDUSTRY", "LOCATION", "SIZE", "FOUNDED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		})
	for _, c := range companies {
		t.Row(c.ID, c.Name, c.Industry, c.Location, optional(c.Size), optional(c.Founded))
	}
	return t.String()
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
