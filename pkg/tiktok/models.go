package tiktok

import "encoding/json"

const (
	// NextDataSelector matches the page-state script on server-rendered pages
	NextDataSelector = "script#__NEXT_DATA__"

	// UniversalDataSelector matches the page-state script on newer pages
	UniversalDataSelector = "script#__UNIVERSAL_DATA_FOR_REHYDRATION__"

	videoDetailScope = "webapp.video-detail"
)

// NextData is the subset of the __NEXT_DATA__ document the sync reads
type NextData struct {
	Props struct {
		PageProps struct {
			ItemInfo ItemInfo `json:"itemInfo"`
		} `json:"pageProps"`
	} `json:"props"`
}

// UniversalData is the subset of the __UNIVERSAL_DATA_FOR_REHYDRATION__
// document the sync reads
type UniversalData struct {
	DefaultScope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
}

// VideoDetail is the video-detail scope inside UniversalData
type VideoDetail struct {
	ItemInfo ItemInfo `json:"itemInfo"`
}

// ItemInfo wraps the post item
type ItemInfo struct {
	ItemStruct ItemStruct `json:"itemStruct"`
}

// ItemStruct represents a single post. CreateTime is kept raw because it is
// served as a number on some pages and as a numeric string on others.
type ItemStruct struct {
	ID         string          `json:"id"`
	Desc       string          `json:"desc"`
	CreateTime json.RawMessage `json:"createTime"`
}

// VideoDetailItem returns the item from the video-detail scope, if present
func (u *UniversalData) VideoDetailItem() (*ItemStruct, bool) {
	raw, ok := u.DefaultScope[videoDetailScope]
	if !ok {
		return nil, false
	}

	var detail VideoDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, false
	}
	return &detail.ItemInfo.ItemStruct, true
}
