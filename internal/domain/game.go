package domain

import "strings"

// Category is one kind of installable content and where it lives under the game directory.
type Category struct {
	Name    string
	ClassID int
	Subdir  string // slash separated, relative to the game directory
}

const (
	ClassMods         = 9137
	ClassWorlds       = 9184
	ClassPrefabs      = 9185
	ClassBootstrap    = 9281
	ClassTranslations = 10350
)

// DefaultClassID is used for items whose class is unknown.
const DefaultClassID = ClassMods

// Categories is the fixed category table, in display order.
var Categories = []Category{
	{Name: "mods", ClassID: ClassMods, Subdir: "UserData/Mods"},
	{Name: "worlds", ClassID: ClassWorlds, Subdir: "UserData/Saves"},
	{Name: "prefabs", ClassID: ClassPrefabs, Subdir: "prefabs"},
	{Name: "bootstrap", ClassID: ClassBootstrap, Subdir: "bootstrap"},
	{Name: "translations", ClassID: ClassTranslations, Subdir: "translations"},
}

// CategoryFor returns the category for a class ID, falling back to mods.
func CategoryFor(classID int) Category {
	for _, c := range Categories {
		if c.ClassID == classID {
			return c
		}
	}
	return Categories[0]
}

// KnownClass reports whether classID is in the category table.
func KnownClass(classID int) bool {
	for _, c := range Categories {
		if c.ClassID == classID {
			return true
		}
	}
	return false
}

// ParseCategory resolves a category by name (case-insensitive).
func ParseCategory(name string) (Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryNames returns the names of all categories in table order.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = c.Name
	}
	return names
}

// RecognizedExtensions are the file suffixes treated as installed artifacts.
var RecognizedExtensions = []string{".jar", ".zip"}

// HasRecognizedExtension reports whether name ends in a recognized extension.
func HasRecognizedExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range RecognizedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
