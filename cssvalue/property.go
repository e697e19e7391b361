// Package cssvalue models the computed-style side of DOMGuard: a registry of
// monitored CSS properties, a computed-style store, and structural equality
// over parsed CSS values with the three-state partial order used by
// record-mode merging.
package cssvalue

import "golang.org/x/exp/slices"

// PropertyID identifies a CSS property in the registry.
type PropertyID int

// Registered property ids. The zero value is invalid.
const (
	PropertyInvalid PropertyID = iota

	PropertyBackgroundColor
	PropertyBackgroundImage
	PropertyBorderBottomColor
	PropertyBorderBottomStyle
	PropertyBorderLeftColor
	PropertyBorderLeftStyle
	PropertyBorderRightColor
	PropertyBorderRightStyle
	PropertyBorderTopColor
	PropertyBorderTopStyle
	PropertyClear
	PropertyColor
	PropertyContent
	PropertyCursor
	PropertyDirection
	PropertyDisplay
	PropertyFloat
	PropertyFontFamily
	PropertyFontSize
	PropertyFontStyle
	PropertyFontWeight
	PropertyLetterSpacing
	PropertyLineHeight
	PropertyListStyleImage
	PropertyListStylePosition
	PropertyListStyleType
	PropertyOpacity
	PropertyOutlineColor
	PropertyOutlineStyle
	PropertyOverflowX
	PropertyOverflowY
	PropertyPointerEvents
	PropertyPosition
	PropertyTextAlign
	PropertyTextDecorationLine
	PropertyTextTransform
	PropertyVerticalAlign
	PropertyVisibility
	PropertyWhiteSpace
	PropertyWordSpacing
	PropertyZIndex

	// Properties below are registered but never monitored; each fails one
	// of the registry predicates.
	PropertyBackground
	PropertyFont
	PropertyMargin
	PropertyWidth
	PropertyHeight
	PropertyInlineSize
	PropertyBlockSize
	PropertyInternalVisitedColor
	PropertyWebkitAppRegion
)

// Property describes a registered CSS property.
type Property struct {
	// Name is the property name as it appears in CSS text and in the
	// dtt-s-<name> shadow attribute.
	Name string

	// WebExposed is false for properties never visible to author code.
	WebExposed bool

	// Shorthand properties expand to longhands and carry no computed value
	// of their own.
	Shorthand bool

	// LayoutDependent properties need layout to produce a computed value,
	// which a mutation hook must never force.
	LayoutDependent bool

	// Internal properties are implementation details.
	Internal bool

	// Surrogate properties resolve to another property depending on the
	// writing mode.
	Surrogate bool

	// FastCompare marks properties whose computed values are simple enough
	// for the equality fast path to produce a definite answer.
	FastCompare bool
}

var registry = map[PropertyID]Property{
	PropertyBackgroundColor:    {Name: "background-color", WebExposed: true, FastCompare: true},
	PropertyBackgroundImage:    {Name: "background-image", WebExposed: true},
	PropertyBorderBottomColor:  {Name: "border-bottom-color", WebExposed: true, FastCompare: true},
	PropertyBorderBottomStyle:  {Name: "border-bottom-style", WebExposed: true, FastCompare: true},
	PropertyBorderLeftColor:    {Name: "border-left-color", WebExposed: true, FastCompare: true},
	PropertyBorderLeftStyle:    {Name: "border-left-style", WebExposed: true, FastCompare: true},
	PropertyBorderRightColor:   {Name: "border-right-color", WebExposed: true, FastCompare: true},
	PropertyBorderRightStyle:   {Name: "border-right-style", WebExposed: true, FastCompare: true},
	PropertyBorderTopColor:     {Name: "border-top-color", WebExposed: true, FastCompare: true},
	PropertyBorderTopStyle:     {Name: "border-top-style", WebExposed: true, FastCompare: true},
	PropertyClear:              {Name: "clear", WebExposed: true, FastCompare: true},
	PropertyColor:              {Name: "color", WebExposed: true, FastCompare: true},
	PropertyContent:            {Name: "content", WebExposed: true},
	PropertyCursor:             {Name: "cursor", WebExposed: true},
	PropertyDirection:          {Name: "direction", WebExposed: true, FastCompare: true},
	PropertyDisplay:            {Name: "display", WebExposed: true, FastCompare: true},
	PropertyFloat:              {Name: "float", WebExposed: true, FastCompare: true},
	PropertyFontFamily:         {Name: "font-family", WebExposed: true},
	PropertyFontSize:           {Name: "font-size", WebExposed: true, FastCompare: true},
	PropertyFontStyle:          {Name: "font-style", WebExposed: true, FastCompare: true},
	PropertyFontWeight:         {Name: "font-weight", WebExposed: true, FastCompare: true},
	PropertyLetterSpacing:      {Name: "letter-spacing", WebExposed: true, FastCompare: true},
	PropertyLineHeight:         {Name: "line-height", WebExposed: true, FastCompare: true},
	PropertyListStyleImage:     {Name: "list-style-image", WebExposed: true},
	PropertyListStylePosition:  {Name: "list-style-position", WebExposed: true, FastCompare: true},
	PropertyListStyleType:      {Name: "list-style-type", WebExposed: true, FastCompare: true},
	PropertyOpacity:            {Name: "opacity", WebExposed: true, FastCompare: true},
	PropertyOutlineColor:       {Name: "outline-color", WebExposed: true, FastCompare: true},
	PropertyOutlineStyle:       {Name: "outline-style", WebExposed: true, FastCompare: true},
	PropertyOverflowX:          {Name: "overflow-x", WebExposed: true, FastCompare: true},
	PropertyOverflowY:          {Name: "overflow-y", WebExposed: true, FastCompare: true},
	PropertyPointerEvents:      {Name: "pointer-events", WebExposed: true, FastCompare: true},
	PropertyPosition:           {Name: "position", WebExposed: true, FastCompare: true},
	PropertyTextAlign:          {Name: "text-align", WebExposed: true, FastCompare: true},
	PropertyTextDecorationLine: {Name: "text-decoration-line", WebExposed: true, FastCompare: true},
	PropertyTextTransform:      {Name: "text-transform", WebExposed: true, FastCompare: true},
	PropertyVerticalAlign:      {Name: "vertical-align", WebExposed: true, FastCompare: true},
	PropertyVisibility:         {Name: "visibility", WebExposed: true, FastCompare: true},
	PropertyWhiteSpace:         {Name: "white-space", WebExposed: true, FastCompare: true},
	PropertyWordSpacing:        {Name: "word-spacing", WebExposed: true, FastCompare: true},
	PropertyZIndex:             {Name: "z-index", WebExposed: true, FastCompare: true},

	PropertyBackground:           {Name: "background", WebExposed: true, Shorthand: true},
	PropertyFont:                 {Name: "font", WebExposed: true, Shorthand: true},
	PropertyMargin:               {Name: "margin", WebExposed: true, Shorthand: true},
	PropertyWidth:                {Name: "width", WebExposed: true, LayoutDependent: true},
	PropertyHeight:               {Name: "height", WebExposed: true, LayoutDependent: true},
	PropertyInlineSize:           {Name: "inline-size", WebExposed: true, Surrogate: true},
	PropertyBlockSize:            {Name: "block-size", WebExposed: true, Surrogate: true},
	PropertyInternalVisitedColor: {Name: "-internal-visited-color", Internal: true},
	PropertyWebkitAppRegion:      {Name: "-webkit-app-region", WebExposed: false},
}

// registryOrder fixes the enumeration order of the registry; monitored
// property lists are seeded in this order.
var registryOrder = []PropertyID{
	PropertyBackgroundColor, PropertyBackgroundImage,
	PropertyBorderBottomColor, PropertyBorderBottomStyle,
	PropertyBorderLeftColor, PropertyBorderLeftStyle,
	PropertyBorderRightColor, PropertyBorderRightStyle,
	PropertyBorderTopColor, PropertyBorderTopStyle,
	PropertyClear, PropertyColor, PropertyContent, PropertyCursor,
	PropertyDirection, PropertyDisplay, PropertyFloat, PropertyFontFamily,
	PropertyFontSize, PropertyFontStyle, PropertyFontWeight,
	PropertyLetterSpacing, PropertyLineHeight, PropertyListStyleImage,
	PropertyListStylePosition, PropertyListStyleType, PropertyOpacity,
	PropertyOutlineColor, PropertyOutlineStyle, PropertyOverflowX,
	PropertyOverflowY, PropertyPointerEvents, PropertyPosition,
	PropertyTextAlign, PropertyTextDecorationLine, PropertyTextTransform,
	PropertyVerticalAlign, PropertyVisibility, PropertyWhiteSpace,
	PropertyWordSpacing, PropertyZIndex,

	PropertyBackground, PropertyFont, PropertyMargin, PropertyWidth,
	PropertyHeight, PropertyInlineSize, PropertyBlockSize,
	PropertyInternalVisitedColor, PropertyWebkitAppRegion,
}

var nameIndex = func() (m map[string]PropertyID) {
	m = make(map[string]PropertyID, len(registry))
	for id, p := range registry {
		m[p.Name] = id
	}

	return m
}()

// Get returns the registered property for id. It panics on an unregistered
// id, mirroring the fact that property ids only come from the registry.
func Get(id PropertyID) Property {
	p, ok := registry[id]
	if !ok {
		panic("cssvalue: unregistered property id")
	}

	return p
}

// ByName returns the id registered for a property name, or PropertyInvalid.
func ByName(name string) PropertyID {
	return nameIndex[name]
}

// MonitoredProperties returns, in registry order, the ids of every property
// DOMGuard monitors: web-exposed longhands whose computed value neither
// depends on layout nor belongs to the engine's internals.
func MonitoredProperties() (ids []PropertyID) {
	for _, id := range registryOrder {
		p := registry[id]
		if p.WebExposed && !p.Shorthand && !p.LayoutDependent && !p.Internal && !p.Surrogate {
			ids = append(ids, id)
		}
	}

	return ids
}

// imageProperties are the properties whose url() values are image
// references rather than plain URI values.
var imageProperties = []PropertyID{
	PropertyBackgroundImage,
	PropertyListStyleImage,
	PropertyContent,
	PropertyCursor,
}

func isImageProperty(id PropertyID) bool {
	return slices.Contains(imageProperties, id)
}
