package sampledata

import (
	"fmt"
	"strings"
	"time"
)

// ContentDays is how many days of scheduled content a seed creates.
const ContentDays = 14

// Used when the caller gives no business name.
const (
	DefaultBusinessName = "Golden treasures"
	defaultBusinessTag  = "GoldenTreasures"
)

// Persona is one audience profile.
type Persona struct {
	Name           string
	Segment        string
	Demographics   map[string]interface{}
	Psychographics map[string]interface{}
	Behaviors      map[string]interface{}
	Goals          []string
	PainPoints     []string
}

// MarketData is one competitor snapshot.
type MarketData struct {
	BrandName           string
	Category            string
	GoldPrice           float64
	SilverPrice         float64
	SocialMediaActivity map[string]interface{}
	EngagementMetrics   map[string]interface{}
	MajorUpdate         string
	ProductInnovation   string
}

// Content is one scheduled item. PersonaIndex points into Sample.Personas;
// the store swaps it for the persona's row id.
type Content struct {
	PersonaIndex int
	Type         string
	Status       string
	Title        string
	Description  string
	ContentText  string
	Hashtags     []string
	ScheduledFor time.Time
}

// Sample is everything one seed writes for a user.
type Sample struct {
	Personas   []Persona
	MarketData []MarketData
	Content    []Content
}

// Build returns the jewelry sample set for businessName, with content
// scheduled from now's calendar day onwards in now's location.
func Build(businessName string, now time.Time) Sample {
	personas := Personas()
	return Sample{
		Personas:   personas,
		MarketData: Competitors(),
		Content:    schedule(businessName, len(personas), now),
	}
}

// Personas returns the three audience profiles.
func Personas() []Persona {
	return []Persona{
		{
			Name:    "Affluent Bride-to-Be",
			Segment: "High-Value Wedding Customers",
			Demographics: map[string]interface{}{
				"age_range":  "25-35 years",
				"income":     "₹15L+ annually",
				"location":   "Tier 1 cities (Mumbai, Delhi, Bangalore)",
				"gender":     "Female",
				"occupation": "Professionals, Entrepreneurs",
			},
			Psychographics: map[string]interface{}{
				"values":    []string{"Quality", "Tradition", "Status", "Uniqueness"},
				"interests": []string{"Weddings", "Fashion", "Luxury Brands"},
				"lifestyle": "Premium, Brand-conscious, Social",
			},
			Behaviors: map[string]interface{}{
				"shopping":           "Research-intensive, visits multiple stores, reads reviews",
				"social_media":       "Instagram (4-5 hours/day), Pinterest, Wedding blogs",
				"purchase_frequency": "Once in lifetime (wedding), Anniversary gifts",
			},
			Goals:      []string{"Find perfect wedding jewelry", "Balance tradition with modern style", "Create lasting memories"},
			PainPoints: []string{"High prices and value concerns", "Limited customization options", "Trust and authenticity issues"},
		},
		{
			Name:    "Festival Shopper",
			Segment: "Seasonal Occasion Buyers",
			Demographics: map[string]interface{}{
				"age_range":  "30-50 years",
				"income":     "₹8-15L annually",
				"location":   "All tiers - Urban and Semi-urban",
				"gender":     "Female (primary), Male (gifting)",
				"occupation": "Middle-class families, Service class",
			},
			Psychographics: map[string]interface{}{
				"values":    []string{"Tradition", "Family", "Auspiciousness", "Investment"},
				"interests": []string{"Festivals", "Cultural events", "Gold investment"},
				"lifestyle": "Traditional, Family-oriented, Value-conscious",
			},
			Behaviors: map[string]interface{}{
				"shopping":           "Seasonal purchases tied to festivals and auspicious dates",
				"social_media":       "Facebook groups, WhatsApp, YouTube",
				"purchase_frequency": "2-3 times per year (Diwali, Akshaya Tritiya, Weddings)",
			},
			Goals:      []string{"Buy gold for Diwali/festivals", "Investment in gold", "Gift to family members"},
			PainPoints: []string{"Gold price volatility", "Authenticity and purity concerns", "Limited lightweight designs for daily wear"},
		},
		{
			Name:    "Young Professional",
			Segment: "Daily Wear & Gifting",
			Demographics: map[string]interface{}{
				"age_range":  "22-32 years",
				"income":     "₹5-10L annually",
				"location":   "Urban metro areas",
				"gender":     "Female (primarily), Male (gifting occasions)",
				"occupation": "IT professionals, Corporate employees, Entrepreneurs",
			},
			Psychographics: map[string]interface{}{
				"values":    []string{"Style", "Convenience", "Affordability", "Modern aesthetics"},
				"interests": []string{"Fashion trends", "Social media", "Travel", "Gifting"},
				"lifestyle": "Modern, Fast-paced, Trend-following, Digital-first",
			},
			Behaviors: map[string]interface{}{
				"shopping":           "Online-first, impulse purchases, influenced by Instagram",
				"social_media":       "Instagram Reels (6+ hours/day), Online marketplaces",
				"purchase_frequency": "Monthly (small pieces), Quarterly (statement pieces)",
			},
			Goals:      []string{"Trendy daily wear jewelry", "Thoughtful gifts for occasions", "Build jewelry collection gradually"},
			PainPoints: []string{"High gold prices limiting options", "Few lightweight modern designs", "Lack of flexible payment options"},
		},
	}
}

// Competitors returns the market snapshots for three Indian jewelry brands.
func Competitors() []MarketData {
	return []MarketData{
		{
			BrandName:   "Tanishq",
			Category:    "Premium Jewelry",
			GoldPrice:   7500,
			SilverPrice: 95,
			SocialMediaActivity: map[string]interface{}{
				"instagram_followers": "2.5M",
				"engagement_rate":     "4.2%",
				"recent_campaigns":    []string{"Diwali Collection 2024", "Bridal Heritage"},
			},
			EngagementMetrics: map[string]interface{}{"likes_avg": 15000, "comments_avg": 500, "shares_avg": 200},
			MajorUpdate:       "Launched sustainable gold collection",
			ProductInnovation: "Digital gold investment platform",
		},
		{
			BrandName:   "PC Jeweller",
			Category:    "Mid-Premium Jewelry",
			GoldPrice:   7450,
			SilverPrice: 93,
			SocialMediaActivity: map[string]interface{}{
				"instagram_followers": "850K",
				"engagement_rate":     "3.1%",
				"recent_campaigns":    []string{"Akshaya Tritiya Special", "Lightweight Gold"},
			},
			EngagementMetrics: map[string]interface{}{"likes_avg": 5000, "comments_avg": 150, "shares_avg": 80},
			MajorUpdate:       "Expanded to 20 new cities",
			ProductInnovation: "24-hour gold price lock guarantee",
		},
		{
			BrandName:   "Kalyan Jewellers",
			Category:    "Traditional Jewelry",
			GoldPrice:   7480,
			SilverPrice: 94,
			SocialMediaActivity: map[string]interface{}{
				"instagram_followers": "1.2M",
				"engagement_rate":     "3.8%",
				"recent_campaigns":    []string{"Wedding Collection", "Temple Jewelry"},
			},
			EngagementMetrics: map[string]interface{}{"likes_avg": 8000, "comments_avg": 300, "shares_avg": 150},
			MajorUpdate:       "Partnership with Amitabh Bachchan for Diwali campaign",
			ProductInnovation: "Antique jewelry restoration service",
		},
	}
}

var reelCollections = []string{"bridal", "festival", "daily wear"}

// schedule alternates posts (10:00) and reels (17:00) across ContentDays
// days, cycling through the personas. Everything awaits owner approval.
func schedule(businessName string, personas int, now time.Time) []Content {
	tag := defaultBusinessTag
	if strings.TrimSpace(businessName) == "" {
		businessName = DefaultBusinessName
	} else {
		tag = strings.Join(strings.Fields(businessName), "")
	}
	hashtags := []string{"#Diwali2024", "#JewelryLove", "#GoldJewelry", "#FestiveCollection", "#" + tag}

	items := make([]Content, 0, ContentDays)
	for i := 0; i < ContentDays; i++ {
		c := Content{
			PersonaIndex: i % personas,
			Status:       "pending_approval",
			Hashtags:     append([]string(nil), hashtags...),
		}

		hour := 17
		if i%2 == 0 {
			hour = 10
		}
		c.ScheduledFor = time.Date(now.Year(), now.Month(), now.Day()+i, hour, 0, 0, 0, now.Location())

		if i%2 == 0 {
			c.Type = "post"
			c.Title = fmt.Sprintf("Diwali Special Day %d", i+1)
			c.Description = "Celebrate Diwali with our stunning gold collection"
			c.ContentText = "✨ This Diwali, shine brighter than ever! ✨\n\n" +
				"Discover our exclusive gold collection designed for the festival of lights.\n\n" +
				businessName + " brings you timeless elegance meets modern design.\n\n" +
				"🪔 Limited time offer\n💎 Certified purity guaranteed\n🎁 Special festive discounts"
		} else {
			c.Type = "reel"
			c.Title = fmt.Sprintf("Reel: Festival Collection %d", i+1)
			c.Description = "Watch our latest festival collection showcase"
			c.ContentText = fmt.Sprintf("Create stunning reels showcasing our %s collection", reelCollections[i%3])
		}
		items = append(items, c)
	}
	return items
}
