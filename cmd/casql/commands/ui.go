package commands

import (
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func printSuccess(msg string) {
	successColor.Println("✓ " + msg)
}

func printWarning(msg string) {
	warningColor.Println("! " + msg)
}

func printError(msg string) {
	errorColor.Println("✗ " + msg)
}
