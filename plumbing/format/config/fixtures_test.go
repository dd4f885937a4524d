package config

type fixture struct {
	Raw    string
	Config *Config
}

var fixtures = []*fixture{
	{
		Raw: "[core]\n\tbare = false\n",
		Config: &Config{
			Sections: Sections{
				{Name: "core", Options: Options{{Key: "bare", Value: "false"}}},
			},
		},
	},
	{
		Raw: "[remote \"origin\"]\n\turl = https://example.com/repo.git\n\tfetch = +refs/heads/*:refs/remotes/origin/*\n",
		Config: &Config{
			Sections: Sections{
				{
					Name: "remote",
					Subsections: Subsections{
						{
							Name: "origin",
							Options: Options{
								{Key: "url", Value: "https://example.com/repo.git"},
								{Key: "fetch", Value: "+refs/heads/*:refs/remotes/origin/*"},
							},
						},
					},
				},
			},
		},
	},
	{
		Raw: "[user]\n\tname = Jane Doe\n\temail = jane@example.com\n",
		Config: &Config{
			Sections: Sections{
				{
					Name: "user",
					Options: Options{
						{Key: "name", Value: "Jane Doe"},
						{Key: "email", Value: "jane@example.com"},
					},
				},
			},
		},
	},
}
