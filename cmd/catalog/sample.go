package main

import (
	"fmt"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/repository/xlsx"
	"github.com/spf13/cobra"
)

var sampleOut string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a sample catalog workbook (Foundation and Lipstick sheets)",
	RunE: func(cmd *cobra.Command, args []string) error {
		products := sampleProducts()
		if err := xlsx.Write(sampleOut, products); err != nil {
			return err
		}

		counts := make(map[domain.Category]int)
		for _, p := range products {
			counts[p.Category]++
		}
		fmt.Printf("Created %q: foundation=%d lipstick=%d\n", sampleOut, counts[domain.Foundation], counts[domain.Lipstick])
		return nil
	},
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "data/Make-Up Recommendation.xlsx", "Output workbook path")
	rootCmd.AddCommand(sampleCmd)
}
