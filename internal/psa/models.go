package psa

// Software types known to the vendor update API. NAC (Navigation Audio
// Connectée) and RCC (Radio Couleur Connectée) are the two firmware
// families; map packages use a per-region type.
const (
	SoftwareTypeNAC = "ovip-int-firmware-version"
	SoftwareTypeRCC = "rcc-firmware"
)

type updateRequest struct {
	VIN           string              `json:"vin"`
	SoftwareTypes []softwareTypeField `json:"softwareTypes"`
}

type softwareTypeField struct {
	SoftwareType string `json:"softwareType"`
}

type UpdateResponse struct {
	RequestResult string     `json:"requestResult"`
	VIN           string     `json:"vin"`
	Software      []Software `json:"software"`
}

type Software struct {
	Type    string           `json:"softwareType"`
	Version string           `json:"typeVersion"`
	Updates []SoftwareUpdate `json:"update"`
}

type SoftwareUpdate struct {
	UpdateID      string `json:"updateId"`
	UpdateSize    string `json:"updateSize"`
	UpdateVersion string `json:"updateVersion"`
	UpdateDate    string `json:"updateDate"`
	UpdateURL     string `json:"updateURL"`
	LicenseURL    string `json:"licenseURL"`
}

// Empty reports whether the server sent a placeholder entry, which it does
// when a software type has no available update.
func (u *SoftwareUpdate) Empty() bool {
	return u.UpdateID == ""
}
