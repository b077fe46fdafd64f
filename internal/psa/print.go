package psa

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/ddaumiller/psa-update/internal/output"
)

func softwareTypeName(softwareType string) string {
	switch softwareType {
	case SoftwareTypeNAC:
		return "NAC firmware"
	case SoftwareTypeRCC:
		return "RCC firmware"
	default:
		return softwareType
	}
}

// Print renders one proposed update for the confirmation prompt.
func Print(software *Software, update *SoftwareUpdate) {
	output.PrintHeader(fmt.Sprintf("Update available: %s", softwareTypeName(software.Type)))
	output.PrintDetail(fmt.Sprintf("  Version: %s", update.UpdateVersion))
	output.PrintDetail(fmt.Sprintf("  Released: %s", update.UpdateDate))
	output.PrintDetail(fmt.Sprintf("  Size: %s", formatUpdateSize(update.UpdateSize)))
	if update.LicenseURL != "" {
		output.PrintDetail(fmt.Sprintf("  License: %s", update.LicenseURL))
	}
}

// The API reports sizes as decimal byte-count strings.
func formatUpdateSize(size string) string {
	bytes, err := strconv.ParseUint(size, 10, 64)
	if err != nil {
		return size
	}
	return humanize.IBytes(bytes)
}
