package services

import (
	"fmt"
	"strings"

	"uber-receipts/models"
)

// PrintRunReport formats and prints the end-of-run summary to the terminal
func PrintRunReport(sum *models.RunSummary, outputDir string) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║%s║\n", center("RECEIPT DOWNLOAD SUMMARY", 55))
	fmt.Printf("╚%s╝\n", border)

	fmt.Printf("\n RESULTS\n%s\n", thin)
	fmt.Printf("  Trips Attempted          : %d\n", sum.Attempted)
	fmt.Printf("  Receipts Downloaded      : %d\n", len(sum.Downloaded))
	fmt.Printf("  Skipped (already saved)  : %d\n", len(sum.Skipped))
	fmt.Printf("  Failed                   : %d\n", len(sum.Failed))

	if len(sum.Failed) > 0 {
		fmt.Printf("\n FAILED TRIPS (retry individually with --trip-ids)\n%s\n", thin)
		for _, id := range sum.Failed {
			fmt.Printf("  - %s\n", id)
		}
	}

	if len(sum.Downloaded) > 0 {
		fmt.Printf("\n Receipts saved to: %s\n", outputDir)
	}

	fmt.Printf("\n%s\n\n", border)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}
