package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/numplan/numplan/phonenumber"
)

var findCmd = &cobra.Command{
	Use:   "find [text]",
	Short: "Find phone numbers in free text",
	Long: `Scan text for phone numbers and print each match with its position
and parsed form. Reads from stdin when no text argument is given.

Examples:
  numplan find --region US "Call me at (650) 253-0000 or 845-0001 ext. 21"
  cat contacts.txt | numplan find --region GB`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().String("leniency", "valid", "Match leniency: possible, valid, strict_grouping, or exact_grouping")
	findCmd.Flags().Int("max-tries", 65535, "Maximum candidates to examine before giving up")
}

func runFind(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to scan (pass text as an argument or on stdin)")
	}

	leniencyName, _ := cmd.Flags().GetString("leniency")
	var leniency phonenumber.Leniency
	switch strings.ToLower(leniencyName) {
	case "possible":
		leniency = phonenumber.LeniencyPossible
	case "", "valid":
		leniency = phonenumber.LeniencyValid
	case "strict_grouping":
		leniency = phonenumber.LeniencyStrictGrouping
	case "exact_grouping":
		leniency = phonenumber.LeniencyExactGrouping
	default:
		return fmt.Errorf("unknown leniency %q (use possible, valid, strict_grouping, or exact_grouping)", leniencyName)
	}
	maxTries, _ := cmd.Flags().GetInt("max-tries")

	engine := newEngine()
	matches := engine.FindNumbers(text, regionFlag(cmd), leniency, maxTries)

	if outputJSON(cmd) {
		out := make([]map[string]any, 0, len(matches))
		for _, m := range matches {
			out = append(out, map[string]any{
				"start":  m.Start,
				"end":    m.End,
				"raw":    m.Raw,
				"e164":   engine.Format(m.Number, phonenumber.FormatE164),
				"region": engine.RegionCodeForNumber(m.Number),
				"type":   engine.GetNumberType(m.Number).String(),
			})
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"matches": out,
			"count":   len(out),
		})
	}

	if len(matches) == 0 {
		fmt.Println("no phone numbers found")
		return nil
	}
	c := colorEnabled()
	for _, m := range matches {
		fmt.Printf("%s  %s  %s\n",
			bold(engine.Format(m.Number, phonenumber.FormatE164), c),
			m.Raw,
			dim(fmt.Sprintf("[%d:%d]", m.Start, m.End), c))
	}
	return nil
}
