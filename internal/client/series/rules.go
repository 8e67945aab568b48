package series

// SubstringRule maps any title containing Trigger to Key.
type SubstringRule struct {
	Trigger string
	Key     string
}

// CompoundRule maps any title containing every one of All to Key.
type CompoundRule struct {
	All []string
	Key string
}

// Rules is the ordered rule table behind KeyOf. The first rule that matches
// decides the key: fixed membership, then substrings, then compounds, then
// the delimiter. A title matching nothing is its own key.
type Rules struct {
	Fixed      map[string]string
	Substrings []SubstringRule
	Compounds  []CompoundRule
	// Delimiter separates the series name from a per-episode qualifier.
	Delimiter string
}

const photokina2018 = "フォトキナ2018"

// DefaultRules is the table used by the package-level KeyOf and Group.
var DefaultRules = Rules{
	Fixed: map[string]string{
		"ケルンの衝撃":  photokina2018,
		"新たなるニコン": photokina2018,
	},
	Substrings: []SubstringRule{
		// full-width digits and the 買換え spelling also occur in titles
		{Trigger: "フォトキナ２０１８", Key: photokina2018},
		{Trigger: "フォトキナ2018", Key: photokina2018},
		{Trigger: "買換え狂騒曲", Key: "買い替え狂騒曲"},
	},
	Compounds: []CompoundRule{
		{All: []string{"カメラ", "買い替え"}, Key: "買い替え狂騒曲"},
	},
	Delimiter: "（",
}
