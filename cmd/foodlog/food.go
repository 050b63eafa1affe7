package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"foodlog/internal/model"
	"foodlog/internal/tracker"

	"github.com/spf13/cobra"
)

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan TEXT...",
	Short: "Find foods matching a description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		top, _ := cmd.Flags().GetInt("top")

		a, err := newApp("scan")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		matches, err := a.Scan(strings.Join(args, " "), top)
		if err != nil {
			return err
		}
		printMatches(os.Stdout, matches)
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log TEXT...",
	Short: "Log an entry for the best matching food",
	Long: `Log an entry for the best matching food.

With --exact the text must be a food name (case-insensitive). With --calories the
text is logged as a one-off food that is not added to the catalog.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		quantity, _ := cmd.Flags().GetFloat64("quantity")
		exact, _ := cmd.Flags().GetBool("exact")
		text := strings.Join(args, " ")

		a, err := newApp("log")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		var entry *model.Entry
		switch {
		case cmd.Flags().Changed("calories"):
			calories, _ := cmd.Flags().GetFloat64("calories")
			serving, _ := cmd.Flags().GetString("serving")
			entry, err = a.LogManual(text, serving, calories, quantity, macroFlags(cmd))
		case exact:
			entry, err = a.LogByName(text, quantity)
		default:
			entry, err = a.LogText(text, quantity)
		}
		if err != nil {
			return err
		}

		fmt.Print("Logged: ")
		printEntry(os.Stdout, entry, a.Location())
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add NAME SERVING CALORIES",
	Short: "Add a custom food to the catalog",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		calories, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid calories %q: %w", args[2], err)
		}
		aliases, _ := cmd.Flags().GetStringSlice("alias")

		a, err := newApp("add")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		food, err := a.AddFood(model.Food{
			Name:           args[0],
			ServingSize:    args[1],
			Calories:       calories,
			Macronutrients: macroFlags(cmd),
			Aliases:        aliases,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s kcal per %s)\n", food.Name, formatNumber(food.Calories), food.ServingSize)
		return nil
	},
}

// entries command
var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List logged entries",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		day, _ := cmd.Flags().GetString("day")

		a, err := newApp("entries")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if day != "" {
			report, err := a.EntriesForDay(day)
			if err != nil {
				return err
			}
			printEntries(os.Stdout, report.Entries, a.Location())
			return nil
		}

		entries, err := a.ListEntries()
		if err != nil {
			return err
		}
		printEntries(os.Stdout, entries, a.Location())
		return nil
	},
}

// summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show daily nutrition totals",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		day, _ := cmd.Flags().GetString("day")
		today, _ := cmd.Flags().GetBool("today")

		a, err := newApp("summary")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if today || day != "" {
			var report *tracker.DayReport
			if today {
				report, err = a.Today()
			} else {
				report, err = a.EntriesForDay(day)
			}
			if err != nil {
				return err
			}
			printDay(os.Stdout, report.Summary)
			return nil
		}

		days, err := a.Summary()
		if err != nil {
			return err
		}
		if len(days) == 0 {
			fmt.Println("No entries logged.")
			return nil
		}
		for _, d := range days {
			printDay(os.Stdout, d)
		}

		calories, macros, err := a.Totals()
		if err != nil {
			return err
		}
		fmt.Printf("Total       %8s kcal  %s\n", formatNumber(calories), formatMacros(macros))
		return nil
	},
}

// foods command
var foodsCmd = &cobra.Command{
	Use:   "foods",
	Short: "List the food catalog",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("foods")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		foods, err := a.Foods()
		if err != nil {
			return err
		}
		printFoods(os.Stdout, foods)
		return nil
	},
}

// macroFlags collects the macronutrient flags the user actually set.
func macroFlags(cmd *cobra.Command) map[string]float64 {
	macros := map[string]float64{}
	for _, name := range []string{"protein", "carbs", "fat"} {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetFloat64(name)
			macros[name] = v
		}
	}
	return macros
}

func addMacroFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("protein", 0, "Protein in grams per serving")
	cmd.Flags().Float64("carbs", 0, "Carbohydrates in grams per serving")
	cmd.Flags().Float64("fat", 0, "Fat in grams per serving")
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntP("top", "n", 3, "Number of matches to show (0 for all)")

	rootCmd.AddCommand(logCmd)
	logCmd.Flags().Float64P("quantity", "q", 1, "Number of servings")
	logCmd.Flags().Bool("exact", false, "Treat the text as an exact food name")
	logCmd.Flags().Float64("calories", 0, "Log a one-off food with these calories per serving")
	logCmd.Flags().String("serving", "", "Serving size for a one-off food")
	addMacroFlags(logCmd)

	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringSlice("alias", nil, "Alternate name (repeatable)")
	addMacroFlags(addCmd)

	rootCmd.AddCommand(entriesCmd)
	entriesCmd.Flags().String("day", "", "Only show entries for this day (YYYY-MM-DD)")

	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().String("day", "", "Show a single day (YYYY-MM-DD)")
	summaryCmd.Flags().Bool("today", false, "Show today only")

	rootCmd.AddCommand(foodsCmd)
}
