package seed

import (
	"volunteerhub/internal/utils"
	"volunteerhub/pkg/types"
)

// compile-time safe: if Category changes shape, this won't compile
var categories = []types.Category{
	{
		ID:           "9MalmKn5UGGFwSWZ2yh9VpZvIXdXBGo1",
		Name:         "Environment",
		Slug:         "environment",
		Description:  utils.StringPtr("Cleanups, tree planting, conservation and habitat restoration"),
		DisplayOrder: 1,
		IsActive:     true,
	},
	{
		ID:           "50x8jugBxgLTl1DwG5PQA76OAtKl5eSc",
		Name:         "Education & Tutoring",
		Slug:         "education-tutoring",
		Description:  utils.StringPtr("Homework help, literacy programs and adult education"),
		DisplayOrder: 2,
		IsActive:     true,
	},
	{
		ID:           "KVHBj99hgpRKOgxAmztm4C4E7s5UvnTH",
		Name:         "Food & Nutrition",
		Slug:         "food-nutrition",
		Description:  utils.StringPtr("Food banks, meal delivery and community kitchens"),
		DisplayOrder: 3,
		IsActive:     true,
	},
	{
		ID:           "cfqAH1f4UTqLyc82tnKN1hOD6tN744lT",
		Name:         "Health & Wellness",
		Slug:         "health-wellness",
		Description:  utils.StringPtr("Clinics, blood drives and wellness outreach"),
		DisplayOrder: 4,
		IsActive:     true,
	},
	{
		ID:           "iJl10c2C0OIM6EzD5o6UvqnV5A9WiIvn",
		Name:         "Animal Welfare",
		Slug:         "animal-welfare",
		Description:  utils.StringPtr("Shelters, fostering and wildlife rescue"),
		DisplayOrder: 5,
		IsActive:     true,
	},
	{
		ID:           "S4dSO9ztv0DwLnNENmxrjdB799FxKq4b",
		Name:         "Community Development",
		Slug:         "community-development",
		Description:  utils.StringPtr("Neighborhood projects, housing repair and civic events"),
		DisplayOrder: 6,
		IsActive:     true,
	},
	{
		ID:           "5IP1dSYRVtevD83iNNwdTZHHz166zSDs",
		Name:         "Disaster Relief",
		Slug:         "disaster-relief",
		Description:  utils.StringPtr("Emergency response, shelters and recovery work"),
		DisplayOrder: 7,
		IsActive:     true,
	},
	{
		ID:           "vJFYP4clWkssdAsMG4TqlopAzSUCLwgS",
		Name:         "Arts & Culture",
		Slug:         "arts-culture",
		Description:  utils.StringPtr("Museums, festivals, libraries and community theater"),
		DisplayOrder: 8,
		IsActive:     true,
	},
	{
		ID:           "lDwvavWNhHnLLu56LphYBpCdNraSx17k",
		Name:         "Seniors",
		Slug:         "seniors",
		Description:  utils.StringPtr("Companionship, errands and care home visits"),
		DisplayOrder: 9,
		IsActive:     true,
	},
	{
		ID:           "rOw26e4b8NUGM91POVrvqrLn8ul5Uxuf",
		Name:         "Youth & Mentoring",
		Slug:         "youth-mentoring",
		Description:  utils.StringPtr("Coaching, mentoring and after-school programs"),
		DisplayOrder: 10,
		IsActive:     true,
	},
}
