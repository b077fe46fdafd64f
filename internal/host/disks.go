package host

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/ddaumiller/psa-update/internal/output"
	"github.com/ddaumiller/psa-update/internal/utils"
)

type Disk struct {
	Device     string
	Mountpoint string
	Fstype     string
	Total      uint64
	Free       uint64
}

// ListDisks enumerates mounted physical partitions as candidate extraction
// destinations.
func ListDisks() ([]Disk, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("error listing disks: %v", err)
	}
	var disks []Disk
	for _, partition := range partitions {
		entry := Disk{
			Device:     partition.Device,
			Mountpoint: partition.Mountpoint,
			Fstype:     partition.Fstype,
		}
		if usage, err := disk.Usage(partition.Mountpoint); err == nil {
			entry.Total = usage.Total
			entry.Free = usage.Free
		}
		disks = append(disks, entry)
	}
	return disks, nil
}

// PrintDisks renders the candidate destinations before the extraction
// prompt.
func PrintDisks(disks []Disk) {
	output.PrintHeader("Available disks:")
	for _, d := range disks {
		output.PrintDetail(fmt.Sprintf("  %s on %s (%s) %s free of %s",
			d.Device, d.Mountpoint, d.Fstype,
			utils.FormatBytes(d.Free), utils.FormatBytes(d.Total)))
	}
}
