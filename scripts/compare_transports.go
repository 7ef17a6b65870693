// Script to compare WFS and OGC API results for a WOUDC dataset
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ozonewatch/woudc-client/internal/ogcapi"
	"github.com/ozonewatch/woudc-client/internal/wfs"
)

const (
	wfsBaseURL    = "https://geo.woudc.org/ows"
	ogcapiBaseURL = "https://api.woudc.org"

	dataset  = "totalozone"
	pageSize = 100
)

// Canadian bounding box (approximate)
var caBBox = []float64{-142.0, 42.0, -52.0, 84.0}

func main() {
	end := time.Now().UTC()
	begin := end.AddDate(-1, 0, 0)

	fmt.Printf("=== Transport Comparison: %s over Canada (Last Year) ===\n", dataset)
	fmt.Printf("Date range: %s to %s\n", begin.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Bounding box: %v\n\n", caBBox)

	ctx := context.Background()

	fmt.Println("Querying WFS endpoint...")
	wfsCount, err := queryWFS(ctx, begin, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WFS query failed: %v\n", err)
	} else {
		fmt.Printf("WFS count: %d\n\n", wfsCount)
	}

	fmt.Println("Querying OGC API endpoint...")
	ogcCount, err := queryOGCAPI(ctx, begin, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OGC API query failed: %v\n", err)
	} else {
		fmt.Printf("OGC API count: %d\n\n", ogcCount)
	}

	fmt.Println("=== Comparison ===")
	fmt.Printf("WFS:     %d features\n", wfsCount)
	fmt.Printf("OGC API: %d features\n", ogcCount)
	if wfsCount == ogcCount {
		fmt.Println("Counts match")
	} else {
		diff := wfsCount - ogcCount
		fmt.Printf("Difference: %d\n", diff)
		fmt.Println("\nNote: Differences may occur due to:")
		fmt.Println("  - Different indexing/update times between the two endpoints")
		fmt.Println("  - Match counts reported before vs after temporal filtering")
	}
}

func queryWFS(ctx context.Context, begin, end time.Time) (int, error) {
	client := wfs.NewClient(wfsBaseURL, 120*time.Second)

	filter := fmt.Sprintf(
		`<ogc:Filter xmlns:ogc="http://www.opengis.net/ogc"><ogc:And>`+
			`<ogc:BBOX><ogc:PropertyName>geometry</ogc:PropertyName>`+
			`<gml:Envelope xmlns:gml="http://www.opengis.net/gml" srsName="urn:ogc:def:crs:EPSG::4326">`+
			`<gml:lowerCorner>%f %f</gml:lowerCorner><gml:upperCorner>%f %f</gml:upperCorner>`+
			`</gml:Envelope></ogc:BBOX>`+
			`<ogc:PropertyIsBetween><ogc:PropertyName>instance_datetime</ogc:PropertyName>`+
			`<ogc:LowerBoundary><ogc:Literal>%s</ogc:Literal></ogc:LowerBoundary>`+
			`<ogc:UpperBoundary><ogc:Literal>%s</ogc:Literal></ogc:UpperBoundary>`+
			`</ogc:PropertyIsBetween></ogc:And></ogc:Filter>`,
		caBBox[0], caBBox[1], caBBox[2], caBBox[3],
		begin.Format("2006-01-02 15:04:05"), end.Format("2006-01-02 15:04:05"),
	)

	page, err := client.GetFeature(ctx, wfs.GetFeatureParams{
		TypeName:    dataset,
		Filter:      filter,
		MaxFeatures: pageSize,
	})
	if err != nil {
		return 0, err
	}

	if page.NumberMatched != nil {
		return *page.NumberMatched, nil
	}
	return len(page.Features), nil
}

func queryOGCAPI(ctx context.Context, begin, end time.Time) (int, error) {
	client := ogcapi.NewClient(ogcapiBaseURL, 120*time.Second)

	page, err := client.Items(ctx, ogcapi.ItemsParams{
		Collection: dataset,
		BBox:       caBBox,
		Datetime:   begin.Format(time.RFC3339) + "/" + end.Format(time.RFC3339),
		Limit:      pageSize,
	})
	if err != nil {
		return 0, err
	}

	if page.NumberMatched != nil {
		return *page.NumberMatched, nil
	}
	return len(page.Features), nil
}
