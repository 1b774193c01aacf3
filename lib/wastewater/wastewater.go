// Package wastewater wraps the wastewater surveillance endpoints of the
// outbreak.info API: sample metadata, demixed lineage abundances and
// site-level mutation frequencies.
package wastewater

import (
	"fmt"
	"strings"
	"time"

	"outbreakinfo/lib/dates"
	"outbreakinfo/lib/outbreakapi"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("wastewater")

const (
	metadataEndpoint = "wastewater_metadata/query"
	demixEndpoint    = "wastewater_demix/query"
	variantsEndpoint = "wastewater_variants/query"
)

// DefaultPopulation substitutes for samples whose catchment population
// was not reported.
const DefaultPopulation = 1000

type Client struct {
	api *outbreakapi.Client
}

func NewClient(api *outbreakapi.Client) Client {
	return Client{api: api}
}

func Float(v float64) *float64 { return &v }
func Bool(v bool) *bool        { return &v }

// Sample is the metadata of a single wastewater sample.
type Sample struct {
	Accession      string    `json:"sra_accession"`
	CollectionDate dates.Day `json:"collection_date"`
	Country        string    `json:"geo_loc_country"`
	Region         string    `json:"geo_loc_region"`
	SiteID         string    `json:"collection_site_id"`
	// nil when the site did not report a load
	ViralLoad *float64 `json:"viral_load"`
	// load normalized across sites, nil when unavailable
	NormedViralLoad *float64 `json:"normed_viral_load"`
	// population served by the collection site
	Population   *float64 `json:"ww_population"`
	DemixSuccess bool     `json:"demix_success"`
}

// Filter narrows a wastewater sample query. Zero-valued fields are not
// applied.
type Filter struct {
	Country string
	Region  string
	SiteID  string
	// collection date window, either end may be left open
	DateFrom time.Time
	DateTo   time.Time
	// restrict to specific SRA accessions
	Accessions    []string
	MinViralLoad  *float64
	MinPopulation *float64
	// nil means true: samples that failed demixing carry no lineage
	// information and are excluded by default
	DemixSuccess *bool
}

func (f Filter) query() string {
	var terms []string
	if f.Country != "" {
		terms = append(terms, "geo_loc_country:"+f.Country)
	}
	if f.Region != "" {
		terms = append(terms, "geo_loc_region:"+f.Region)
	}
	if f.SiteID != "" {
		terms = append(terms, "collection_site_id:"+f.SiteID)
	}
	if !f.DateFrom.IsZero() || !f.DateTo.IsZero() {
		from, to := "*", "*"
		if !f.DateFrom.IsZero() {
			from = dates.Format(f.DateFrom)
		}
		if !f.DateTo.IsZero() {
			to = dates.Format(f.DateTo)
		}
		terms = append(terms, fmt.Sprintf("collection_date:[%s TO %s]", from, to))
	}
	if len(f.Accessions) > 0 {
		accessions := make([]string, len(f.Accessions))
		for i, id := range f.Accessions {
			accessions[i] = "sra_accession:" + id
		}
		terms = append(terms, "("+outbreakapi.OrJoin(accessions)+")")
	}
	if f.MinViralLoad != nil {
		terms = append(terms, fmt.Sprintf("viral_load:>=%g", *f.MinViralLoad))
	}
	if f.MinPopulation != nil {
		terms = append(terms, fmt.Sprintf("ww_population:>=%g", *f.MinPopulation))
	}
	demixSuccess := true
	if f.DemixSuccess != nil {
		demixSuccess = *f.DemixSuccess
	}
	terms = append(terms, "demix_success:"+outbreakapi.BoolString(demixSuccess))

	return strings.Join(terms, " AND ")
}
