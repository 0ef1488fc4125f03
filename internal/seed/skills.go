package seed

import "volunteerhub/pkg/types"

var skills = []types.Skill{
	{ID: "zG25PB3cavxylOJhjEdx82l5oGBqN5lx", Name: "First Aid", Slug: "first-aid"},
	{ID: "npJPrvNNNvF0ak36DK2hRNgCqzcj1pPI", Name: "Teaching", Slug: "teaching"},
	{ID: "1O22wGHmSF6KFR3MAG6FRSfZncs6kNzE", Name: "Driving", Slug: "driving"},
	{ID: "5Db0pK20i8HyFwCdOpLGTpHwH6grqT9e", Name: "Cooking", Slug: "cooking"},
	{ID: "bnis8MT9vOL4dJvhGAI5KZ24G2MTjtQR", Name: "Event Planning", Slug: "event-planning"},
	{ID: "nTEMtqzwWv66urLE3gvNWgpXQlW24cmm", Name: "Graphic Design", Slug: "graphic-design"},
	{ID: "1T3MGLpQF3Hy5Q2pkimz3xDPlvin7dYv", Name: "Translation", Slug: "translation"},
	{ID: "6491kQeOVBAShNNlCjd4XDixr260fxvc", Name: "Fundraising", Slug: "fundraising"},
	{ID: "syA7VRswlX0xaW3yKD2S1djugoCLlNRC", Name: "Carpentry", Slug: "carpentry"},
	{ID: "SxSOnSQgVFH4w1WUAcXTai0cz7F1RfO0", Name: "Gardening", Slug: "gardening"},
	{ID: "xNPVEG92qAktuPoD16WGSe8b9E39YfrL", Name: "Photography", Slug: "photography"},
	{ID: "SoS7bZVPf0lY8wDh6eZ0QnnpQmg4pAbY", Name: "Social Media", Slug: "social-media"},
	{ID: "gqnKaHEMe7YrQcnI0pDiFXlsdrOmkR4q", Name: "Data Entry", Slug: "data-entry"},
	{ID: "tgAROBKePyXINr6JdvKF6nf84tZQ9EYA", Name: "Public Speaking", Slug: "public-speaking"},
}
