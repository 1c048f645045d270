package domain

// AllRegionsName selects the union of every configured region.
const AllRegionsName = "TÜMÜ"

// Region is a named allow-list of canonical project buckets. Project order is
// the display order.
type Region struct {
	Name     string   `json:"name"`
	Projects []string `json:"projects"`
}

// Regions is the region allow-list table. Names and projects are stored in
// canonical (normalized) form.
var Regions = []Region{
	{
		Name: "MARMARA",
		Projects: []string{
			"EBEBEK FTL",
			"EBEBEK FTL GEBZE",
			"MODERN KARTON FTL",
			"PEPSİ FTL",
			"ŞİŞECAM FTL",
			"FLO FTL",
		},
	},
	{
		Name: "TRAKYA",
		Projects: []string{
			"KÜÇÜKBAY TRAKYA FTL",
			"MODERN KARTON TRAKYA FTL",
			"TRAKYA CAM FTL",
		},
	},
	{
		Name: "EGE",
		Projects: []string{
			"KÜÇÜKBAY İZMİR FTL",
			"ÇİMSA EGE FTL",
			"PINAR FRİGO",
		},
	},
	{
		Name: "İÇ ANADOLU",
		Projects: []string{
			"ŞEKER FTL",
			"ANKARA İLAÇ FRİGO",
			"KONYA ŞEKER FTL",
		},
	},
}

// ServiceScope lists the canonical service names the dashboard counts.
var ServiceScope = []string{
	"YURTİÇİ FTL HİZMETLERİ",
	"YURTİÇİ FRİGO HİZMETLERİ",
	"YURTİÇİ PARSİYEL HİZMETLERİ",
}

// FleetLabels are the canonical vehicle working names of own-fleet trips.
// Every other working name counts as spot.
var FleetLabels = []string{
	"FİLO",
	"ÖZMAL",
	"ÖZMAL FİLO",
}

// FindRegion looks a region up by canonical name. AllRegionsName yields the
// union of every region.
func FindRegion(name string) (Region, bool) {
	if name == AllRegionsName {
		return AllRegions(), true
	}
	for _, r := range Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// AllRegions merges every region into one, keeping first-seen project order.
func AllRegions() Region {
	seen := make(map[string]struct{})
	all := Region{Name: AllRegionsName}
	for _, r := range Regions {
		for _, p := range r.Projects {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			all.Projects = append(all.Projects, p)
		}
	}
	return all
}
