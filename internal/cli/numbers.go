package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/numplan/numplan/internal/cli/ui"
	"github.com/numplan/numplan/phonenumber"
)

var parseCmd = &cobra.Command{
	Use:   "parse <number>",
	Short: "Parse a phone number into its parts",
	Long: `Parse a phone number and print its country code, national number,
extension, region, and type.

Examples:
  numplan parse --region NZ "03-331 6005"
  numplan parse "+64 3 331 6005"`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var validateCmd = &cobra.Command{
	Use:   "validate <number>",
	Short: "Check whether a phone number is valid",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var typeCmd = &cobra.Command{
	Use:   "type <number>",
	Short: "Print the line type of a phone number",
	Long: `Print the line type of a phone number: FIXED_LINE, MOBILE,
TOLL_FREE, PREMIUM_RATE, VOIP, and so on.`,
	Args: cobra.ExactArgs(1),
	RunE: runType,
}

var formatCmd = &cobra.Command{
	Use:   "format <number>",
	Short: "Format a phone number",
	Long: `Format a phone number in one of the four standard styles.

Examples:
  numplan format --region US --style national "6502530000"
  numplan format --style rfc3966 "+64 3 331 6005"`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

var matchCmd = &cobra.Command{
	Use:   "match <first> <second>",
	Short: "Compare two phone numbers",
	Long: `Compare two phone numbers and print the match grade:
EXACT_MATCH, NSN_MATCH, SHORT_NSN_MATCH, NO_MATCH, or NOT_A_NUMBER.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	for _, cmd := range []*cobra.Command{parseCmd, validateCmd, typeCmd, formatCmd, findCmd} {
		cmd.Flags().String("region", "ZZ", "Region assumed when the number has no country code (e.g. US)")
	}
	formatCmd.Flags().String("style", "e164", "Output style: e164, international, national, or rfc3966")
	formatCmd.Flags().String("carrier-code", "", "Carrier selection code for national dialling")
}

func regionFlag(cmd *cobra.Command) string {
	region, _ := cmd.Flags().GetString("region")
	return strings.ToUpper(region)
}

// parseArg parses the positional number argument, rendering parse failures
// with a hint about the --region flag.
func parseArg(cmd *cobra.Command, engine *phonenumber.Engine, raw string) (*phonenumber.PhoneNumber, error) {
	number, err := engine.Parse(raw, regionFlag(cmd))
	if err != nil {
		if phonenumber.IsErrInvalidCountryCode(err) {
			return nil, fmt.Errorf("%w (pass --region for numbers without a country code)", err)
		}
		return nil, err
	}
	return number, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	engine := newEngine()
	number, err := engine.ParseAndKeepRawInput(args[0], regionFlag(cmd))
	if err != nil {
		if phonenumber.IsErrInvalidCountryCode(err) {
			return fmt.Errorf("%w (pass --region for numbers without a country code)", err)
		}
		return err
	}

	region := engine.RegionCodeForNumber(number)
	numberType := engine.GetNumberType(number)
	if outputJSON(cmd) {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"country_code":        number.CountryCode,
			"national_number":     engine.NationalSignificantNumber(number),
			"extension":           number.Extension,
			"region":              region,
			"type":                numberType.String(),
			"valid":               engine.IsValidNumber(number),
			"possible":            engine.IsPossibleNumber(number),
			"e164":                engine.Format(number, phonenumber.FormatE164),
			"country_code_source": number.CountryCodeSource.String(),
		})
	}

	c := colorEnabled()
	fmt.Printf("%s  %s\n", bold(engine.Format(number, phonenumber.FormatInternational), c), dim(numberType.String(), c))
	fmt.Printf("  country code      %d\n", number.CountryCode)
	fmt.Printf("  national number   %s\n", engine.NationalSignificantNumber(number))
	if number.Extension != "" {
		fmt.Printf("  extension         %s\n", number.Extension)
	}
	if region != "" {
		fmt.Printf("  region            %s\n", region)
	}
	fmt.Printf("  e164              %s\n", engine.Format(number, phonenumber.FormatE164))
	if engine.IsValidNumber(number) {
		fmt.Printf("  %s valid\n", ui.StyleSuccess.Render(ui.SymbolCheck))
	} else {
		fmt.Printf("  %s not valid\n", ui.StyleError.Render(ui.SymbolCross))
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	engine := newEngine()
	number, err := parseArg(cmd, engine, args[0])
	if err != nil {
		return err
	}
	valid := engine.IsValidNumber(number)
	reason := engine.IsPossibleNumberWithReason(number)

	if outputJSON(cmd) {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"valid":       valid,
			"possible":    reason == phonenumber.ValidationIsPossible || reason == phonenumber.ValidationIsPossibleLocalOnly,
			"possibility": reason.String(),
		})
	}
	if valid {
		fmt.Printf("%s valid\n", ui.StyleSuccess.Render(ui.SymbolCheck))
		return nil
	}
	fmt.Printf("%s not valid (%s)\n", ui.StyleError.Render(ui.SymbolCross), reason.String())
	os.Exit(1)
	return nil
}

func runType(cmd *cobra.Command, args []string) error {
	engine := newEngine()
	number, err := parseArg(cmd, engine, args[0])
	if err != nil {
		return err
	}
	numberType := engine.GetNumberType(number)
	if outputJSON(cmd) {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{"type": numberType.String()})
	}
	fmt.Println(numberType.String())
	return nil
}

func runFormat(cmd *cobra.Command, args []string) error {
	engine := newEngine()
	number, err := parseArg(cmd, engine, args[0])
	if err != nil {
		return err
	}

	styleName, _ := cmd.Flags().GetString("style")
	var style phonenumber.NumberFormat
	switch strings.ToLower(styleName) {
	case "", "e164":
		style = phonenumber.FormatE164
	case "international":
		style = phonenumber.FormatInternational
	case "national":
		style = phonenumber.FormatNational
	case "rfc3966":
		style = phonenumber.FormatRFC3966
	default:
		return fmt.Errorf("unknown style %q (use e164, international, national, or rfc3966)", styleName)
	}

	var formatted string
	if carrierCode, _ := cmd.Flags().GetString("carrier-code"); carrierCode != "" {
		formatted = engine.FormatNationalNumberWithCarrierCode(number, carrierCode)
	} else {
		formatted = engine.Format(number, style)
	}
	if outputJSON(cmd) {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{"formatted": formatted})
	}
	fmt.Println(formatted)
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	engine := newEngine()
	result := engine.IsNumberMatchWithStrings(args[0], args[1])
	if outputJSON(cmd) {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{"match": result.String()})
	}
	fmt.Println(result.String())
	return nil
}
