package generator

import "github.com/sandeepkv93/leap/internal/model"

type suggestion struct {
	title       string
	description string
}

// localCatalog is the built-in fallback: five suggestions per tier for every
// category.
var localCatalog = map[model.Category]map[model.Tier][]suggestion{
	model.CategoryTravel: {
		model.TierQuick: {
			{"Save $10 to your trip fund", "Transfer $10 to a separate savings account or jar right now."},
			{"Research one destination", "Spend 5 minutes looking up your dream location on Pinterest or Google."},
			{"Follow a travel creator", "Find someone who's been where you want to go and hit follow."},
			{"Screenshot a flight deal", "Open Google Flights and save a screenshot of prices to your destination."},
			{"Add 1 item to your packing list", "Start your packing list with one essential item you'll need."},
		},
		model.TierPower: {
			{"Set a trip savings goal", "Calculate the total cost and set up automatic transfers."},
			{"Research accommodations", "Spend 20 minutes comparing hotels, hostels, or Airbnbs."},
			{"Plan your first day itinerary", "Map out what you'll do on day one of your trip."},
			{"Get your passport sorted", "Check expiration date or start the renewal/application process."},
			{"Learn 10 phrases in the local language", "Use Duolingo or YouTube to learn essential phrases."},
		},
		model.TierBoss: {
			{"Book the flight", "Stop researching. Pull the trigger and book it today. You can do this!"},
			{"Tell 3 people your travel date", "Make it real by announcing your trip to friends or family."},
			{"Request time off work", "Send that email to your manager. Block the dates."},
			{"Book your accommodation", "Lock in where you're staying. Refundable options are fine!"},
			{"Create a countdown post", "Share your trip countdown on social media. Make it public!"},
		},
	},
	model.CategoryWorth: {
		model.TierQuick: {
			{"Write down 3 wins from this year", "List accomplishments that prove you deserve more."},
			{"Research market salary", "Spend 5 minutes on Glassdoor looking up your role's pay."},
			{"Save one negotiation tip", "Find and screenshot one salary negotiation tip."},
			{"Update one line on your resume", "Refresh your resume with a recent achievement."},
			{"Practice saying your number out loud", "Say your desired salary in the mirror 3 times."},
		},
		model.TierPower: {
			{"Document your impact", "Write down specific examples of value you've added at work."},
			{"Role-play the conversation", "Practice your ask with a friend or record yourself."},
			{"Research 3 companies that pay more", "Find companies in your field with better compensation."},
			{"Update your LinkedIn headline", "Refresh your profile to reflect your current value."},
			{"Write your negotiation script", "Draft exactly what you'll say when you ask."},
		},
		model.TierBoss: {
			{"Schedule the meeting", "Email your manager and request time to discuss compensation."},
			{"Have the conversation", "It's time. Ask for what you're worth. You got this!"},
			{"Apply to 3 higher-paying roles", "Send out applications today. Know your options."},
			{"Send a cold message to a dream company", "Reach out on LinkedIn to someone at your target company."},
			{"Share your salary publicly", "Post about pay transparency. Help others while empowering yourself."},
		},
	},
	model.CategoryLaunch: {
		model.TierQuick: {
			{"Name your project", "Give your idea a working title. It doesn't have to be perfect."},
			{"Write your one-liner", "Describe what you're building in one sentence."},
			{"Buy the domain", "Spend 5 minutes and secure a domain name for your idea."},
			{"Create a project folder", "Make a dedicated folder for all your ideas and notes."},
			{"Follow 3 founders in your space", "Find inspiration from people who've launched similar things."},
		},
		model.TierPower: {
			{"Write your about page", "Draft the story of why you're building this."},
			{"Create your first prototype", "Build a rough version, even if it's just on paper."},
			{"Set up your social media", "Create the Instagram/TikTok/Twitter for your project."},
			{"Make a simple landing page", "Use Carrd or Notion to create a basic web presence."},
			{"Define your first 10 customers", "List 10 specific people who would use your product."},
		},
		model.TierBoss: {
			{"Tell 5 people about your idea", "Share what you're building. Make it real by saying it out loud."},
			{"Launch a waitlist", "Open sign-ups and start collecting early interest."},
			{"Make your first sale", "Sell one unit, even at a discount. Revenue is validation."},
			{"Post your launch announcement", "Share it publicly. The world needs to know!"},
			{"Do your first customer interview", "Talk to a potential customer for 20 minutes."},
		},
	},
	model.CategoryGrowth: {
		model.TierQuick: {
			{"Define your future self", "Write 3 sentences about who you're becoming."},
			{"Set one morning intention", "Choose how you want to feel and show up today."},
			{"Journal for 5 minutes", "Write whatever comes to mind. No filter, just flow."},
			{"Unfollow 5 accounts that drain you", "Curate your feed to match who you're becoming."},
			{"Send a gratitude text", "Message someone who's supported you and say thanks."},
		},
		model.TierPower: {
			{"Create a morning routine", "Design a realistic morning ritual for your future self."},
			{"Read for 20 minutes", "Start that book that's been collecting dust."},
			{"Take yourself on a solo date", "Do something alone that future-you would do."},
			{"Write your 1-year vision", "Describe your life one year from today in detail."},
			{"Meditate for 15 minutes", "Sit with yourself. Breathe. Reset your energy."},
		},
		model.TierBoss: {
			{"Set a scary boundary", "Tell someone no, or protect your time/energy publicly."},
			{"Sign up for that course", "Stop thinking about it. Invest in your growth today."},
			{"Have the hard conversation", "Say what you've been avoiding. Clear the air."},
			{"Share your transformation publicly", "Post about your growth journey. Inspire others."},
			{"Book a therapy or coaching session", "Invest in support. You don't have to figure it out alone."},
		},
	},
}

// LocalEntries returns the built-in entries for category and tier.
// Unknown categories use the growth catalog.
func LocalEntries(category model.Category, tier model.Tier) []model.CatalogEntry {
	list := localCatalog[category.Normalize()][tier]
	out := make([]model.CatalogEntry, 0, len(list))
	for _, s := range list {
		out = append(out, model.CatalogEntry{
			Tier:        tier,
			Title:       s.title,
			Description: s.description,
			Level:       1,
			IsActive:    true,
		})
	}
	return out
}
