package profile

// Wildcard grants every permission or tool when present in a set.
const Wildcard = "all"

// ToolCatalog is the full equipment list a wildcard tool set expands to.
var ToolCatalog = []string{
	"arduino",
	"3d_printer",
	"laser_cutter",
	"cnc",
	"computers",
	"advanced_electronics",
	"sensors",
	"soldering_station",
	"multimeter",
}

// Catalog returns a copy of ToolCatalog.
func Catalog() []string {
	out := make([]string, len(ToolCatalog))
	copy(out, ToolCatalog)
	return out
}
