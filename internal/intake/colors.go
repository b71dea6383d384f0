package intake

import "regexp"

type ColorTarget string

const (
	ColorPrimary   ColorTarget = "primary"
	ColorSecondary ColorTarget = "secondary"

	DefaultPrimaryColor   = "#667eea"
	DefaultSecondaryColor = "#764ba2"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(value)
}

func ParseColorTarget(value string) (ColorTarget, error) {
	switch ColorTarget(value) {
	case ColorPrimary, ColorSecondary:
		return ColorTarget(value), nil
	}
	return "", ErrUnknownColor
}

// Colors keeps the two brand colors and the picker visibility flags. The
// flags are independent: opening one picker leaves the other as it was.
type Colors struct {
	primary       string
	secondary     string
	showPrimary   bool
	showSecondary bool
}

func NewColors() *Colors {
	c := &Colors{}
	c.Reset()
	return c
}

func (c *Colors) SetColor(which ColorTarget, hex string) error {
	if _, err := ParseColorTarget(string(which)); err != nil {
		return err
	}
	if !IsHexColor(hex) {
		return ErrInvalidColorFormat
	}
	switch which {
	case ColorPrimary:
		c.primary = hex
	case ColorSecondary:
		c.secondary = hex
	default:
		return ErrUnknownColor
	}
	return nil
}

func (c *Colors) Color(which ColorTarget) (string, error) {
	switch which {
	case ColorPrimary:
		return c.primary, nil
	case ColorSecondary:
		return c.secondary, nil
	}
	return "", ErrUnknownColor
}

func (c *Colors) TogglePicker(which ColorTarget) error {
	switch which {
	case ColorPrimary:
		c.showPrimary = !c.showPrimary
	case ColorSecondary:
		c.showSecondary = !c.showSecondary
	default:
		return ErrUnknownColor
	}
	return nil
}

func (c *Colors) PickerVisible(which ColorTarget) bool {
	switch which {
	case ColorPrimary:
		return c.showPrimary
	case ColorSecondary:
		return c.showSecondary
	}
	return false
}

func (c *Colors) Reset() {
	c.primary = DefaultPrimaryColor
	c.secondary = DefaultSecondaryColor
	c.showPrimary = false
	c.showSecondary = false
}

type ColorsSnapshot struct {
	Primary       string `json:"primary"`
	Secondary     string `json:"secondary"`
	ShowPrimary   bool   `json:"show_primary_picker"`
	ShowSecondary bool   `json:"show_secondary_picker"`
}

func (c *Colors) Snapshot() ColorsSnapshot {
	return ColorsSnapshot{
		Primary:       c.primary,
		Secondary:     c.secondary,
		ShowPrimary:   c.showPrimary,
		ShowSecondary: c.showSecondary,
	}
}
