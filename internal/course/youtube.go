package course

import (
	"encoding/json"
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// YouTubeAdapter reads the ytInitialData JSON embedded in a YouTube results
// page. The results are rendered client-side, so there is no markup to select.
type YouTubeAdapter struct {
	BaseURL string
}

func (a YouTubeAdapter) base() string {
	if a.BaseURL == "" {
		return "https://www.youtube.com"
	}
	return strings.TrimRight(a.BaseURL, "/")
}

func (a YouTubeAdapter) Platform() Platform { return YouTube }

func (a YouTubeAdapter) Referer() string { return a.base() + "/" }

func (a YouTubeAdapter) SearchURL(query string) string {
	return a.base() + "/results?search_query=" + url.QueryEscape(query+" course")
}

var ytInitialDataRe = regexp.MustCompile(`(?s)(?:var ytInitialData|window\["ytInitialData"\])\s*=\s*(\{.*?\});\s*</script>`)

type ytRuns struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (r ytRuns) String() string {
	if r.SimpleText != "" {
		return r.SimpleText
	}
	var sb strings.Builder
	for _, run := range r.Runs {
		sb.WriteString(run.Text)
	}
	return strings.TrimSpace(sb.String())
}

type ytVideo struct {
	VideoID   string `json:"videoId"`
	Title     ytRuns `json:"title"`
	OwnerText ytRuns `json:"ownerText"`
	Length    ytRuns `json:"lengthText"`
	ViewCount ytRuns `json:"viewCountText"`
	Snippet   ytRuns `json:"descriptionSnippet"`
	Thumbnail struct {
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
	DetailedSnippets []struct {
		Snippet ytRuns `json:"snippetText"`
	} `json:"detailedMetadataSnippets"`
}

func (a YouTubeAdapter) Extract(p Page) []Record {
	m := ytInitialDataRe.FindSubmatch(p.Body)
	if m == nil {
		return nil
	}
	var data any
	if err := json.Unmarshal(m[1], &data); err != nil {
		return nil
	}

	var raws []json.RawMessage
	collectRenderers(data, "videoRenderer", &raws)

	var out []Record
	for _, raw := range raws {
		var v ytVideo
		if err := json.Unmarshal(raw, &v); err != nil || v.VideoID == "" {
			continue
		}
		title := v.Title.String()
		if title == "" {
			continue
		}
		rec := Record{
			Title:      title,
			URL:        "https://www.youtube.com/watch?v=" + url.QueryEscape(v.VideoID),
			Instructor: v.OwnerText.String(),
			Duration:   v.Length.String(),
			Students:   parseCount(v.ViewCount.String()),
		}
		if n := len(v.Thumbnail.Thumbnails); n > 0 {
			rec.Image = v.Thumbnail.Thumbnails[n-1].URL
		}
		rec.Description = v.Snippet.String()
		if rec.Description == "" && len(v.DetailedSnippets) > 0 {
			rec.Description = v.DetailedSnippets[0].Snippet.String()
		}
		out = append(out, rec)
		if len(out) == MaxPerPlatform {
			break
		}
	}
	return finalize(out, YouTube, p)
}

// collectRenderers walks decoded JSON depth-first and gathers every value
// stored under key. Arrays keep their order; object keys are visited sorted.
func collectRenderers(node any, key string, out *[]json.RawMessage) {
	switch n := node.(type) {
	case map[string]any:
		if v, ok := n[key]; ok {
			if raw, err := json.Marshal(v); err == nil {
				*out = append(*out, raw)
			}
			return
		}
		for _, k := range slices.Sorted(maps.Keys(n)) {
			collectRenderers(n[k], key, out)
		}
	case []any:
		for _, v := range n {
			collectRenderers(v, key, out)
		}
	}
}
