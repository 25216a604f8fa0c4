package source

import "github.com/goblinsan/gh-milestone-tracker/pkg/types"

// MockDocument is served when the remote document cannot be fetched.
func MockDocument() *types.Document {
	doc := &types.Document{
		Projects: []types.Project{
			{
				ID:            "omnibridge",
				Name:          "Omnibridge",
				Category:      "Infrastructure",
				Status:        types.ProjectOnTrack,
				Progress:      85,
				NextMilestone: "Mainnet Beta",
				DueDate:       "2024-08-15",
				Team:          []string{"Alice Chen", "Bob Rodriguez"},
				Dependencies:  []string{"NEAR Protocol Core"},
				Description:   "Cross-chain bridge infrastructure",
				GitHubRepo:    "https://github.com/omnibridge/omnibridge",
				FundingType:   "infrastructure",
				LastUpdated:   "2024-07-02T10:00:00Z",
				Milestones: []types.Milestone{
					{ID: "omnibridge-m4", Title: "Testnet Launch", Status: types.MilestoneCompleted, DueDate: "2024-07-01", Progress: 100},
					{ID: "omnibridge-m5", Title: "Mainnet Beta", Status: types.MilestoneInProgress, DueDate: "2024-08-15", Progress: 60,
						Dependencies: []string{"omnibridge-m4"}},
				},
			},
			{
				ID:            "agent-hub-sdk",
				Name:          "Agent Hub SDK",
				Category:      "SDK",
				Status:        types.ProjectAtRisk,
				Progress:      62,
				NextMilestone: "API Documentation",
				DueDate:       "2024-07-28",
				Team:          []string{"Carol Kim", "David Park"},
				Dependencies:  []string{"NEAR Intents", "Lucid Wallet"},
				Description:   "SDK for building AI agents on NEAR",
				FundingType:   "sdk",
				LastUpdated:   "2024-07-01T15:30:00Z",
				Milestones: []types.Milestone{
					{ID: "agent-hub-sdk-m1", Title: "API Documentation", Status: types.MilestonePending, DueDate: "2024-07-28", Progress: 30},
				},
			},
			{
				ID:            "meteor-wallet",
				Name:          "Meteor Wallet",
				Category:      "Grantee",
				Status:        types.ProjectDelayed,
				Progress:      45,
				NextMilestone: "Security Audit",
				DueDate:       "2024-07-20",
				Team:          []string{"Eve Thompson", "Frank Liu"},
				Dependencies:  []string{},
				Description:   "Next-generation NEAR wallet",
				FundingType:   "grant",
				LastUpdated:   "2024-06-30T09:15:00Z",
				Milestones: []types.Milestone{
					{ID: "meteor-wallet-m1", Title: "Security Audit", Status: types.MilestoneDelayed, DueDate: "2024-07-20", Progress: 45,
						IsGrantMilestone: true},
				},
			},
		},
		LastUpdate: "2024-07-02T10:00:00Z",
		Version:    "1.0.0",
	}
	doc.Normalize()
	return doc
}
