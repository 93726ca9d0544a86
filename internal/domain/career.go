package domain

// Career is a career field from the closed recommendation vocabulary.
type Career string

const (
	Engineering       Career = "Engineering"
	Management        Career = "Management"
	IT                Career = "IT"
	Medical           Career = "Medical"
	BusinessFinance   Career = "Business/Finance"
	PoliticsReform    Career = "Politics/Social Reform"
	PhysicsScience    Career = "Physics/Science"
	TechEntrepreneur  Career = "Technology/Entrepreneurship"
	WritingLiterature Career = "Writing/Literature"
	MusicPerformance  Career = "Music/Performance"
	ArtsCreative      Career = "Arts/Creative"
	Media             Career = "Media"
	Law               Career = "Law"
	Education         Career = "Education"
	MilitaryDefense   Career = "Military/Defense"
	Research          Career = "Research"
	Agriculture       Career = "Agriculture"
	RealEstate        Career = "Real Estate"
	Spirituality      Career = "Spirituality"
	Hospitality       Career = "Hospitality"
	Sports            Career = "Sports"
)

// Careers is the recommendation vocabulary in declared order. Ranking ties and
// degenerate rankings fall back to this order.
var Careers = []Career{
	Engineering,
	Management,
	IT,
	Medical,
	BusinessFinance,
	PoliticsReform,
	PhysicsScience,
	TechEntrepreneur,
	WritingLiterature,
	MusicPerformance,
	ArtsCreative,
	Media,
	Law,
	Education,
	MilitaryDefense,
	Research,
	Agriculture,
	RealEstate,
	Spirituality,
	Hospitality,
	Sports,
}

// IsKnownCareer reports whether c belongs to the base vocabulary.
func IsKnownCareer(c Career) bool {
	for _, known := range Careers {
		if known == c {
			return true
		}
	}
	return false
}
