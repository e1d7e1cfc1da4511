// internal/ranking/prompt.go
package ranking

import (
	"bytes"
	"encoding/json"
	"text/template"

	"portfolio-service/internal/model"
)

// systemMessage frames the completion request.
const systemMessage = "You are an expert career analyst specializing in industry fit analysis."

const rankingPromptTemplate = `You are an expert career analyst. Based on the following comprehensive professional profile data, analyze and rank the top 10 industries where this person would be most relevant and valuable.

IMPORTANT: Pay special attention to:
- Homepage content (title, description) which describes their current position and professional identity
- Current work experience (where end_date is "Present") which indicates their active industry
- Education background (degree, field of study, institution) which shows their academic foundation
- Research interests and publications which demonstrate expertise areas
- Skills and proficiency levels across different categories
- Blog posts and thought leadership content
- Timeline entries showing career progression

Profile Data:
{{.Profile}}

Please provide:
1. Top 10 industries ranked by relevance (1 = most relevant)
2. For each industry:
   - Industry name
   - Relevance score (0-100)
   - Brief reasoning (2-3 sentences explaining why they're relevant to this industry, citing specific evidence from their profile)
   - Key skills that make them relevant (comma-separated list of 3-5 skills)

CRITICAL: To identify their CURRENT industry, use ONLY the homepage description field. Look at the FIRST line which describes their current position/role.
- If they work at a university, college, or educational institution (e.g., "Academic Researcher at [University]", "Professor at", "Research Fellow at"), their current industry is "Higher Education"
- If they work at a tech company, their current industry is "Technology"
- If they work at a financial institution, their current industry is "Finance"
Focus on WHERE they currently work (their employer), not what they're studying or their educational background.

Respond in JSON format:
{
  "current_industry": "Industry Name",
  "rankings": [
    {
      "rank": 1,
      "industry_name": "Industry Name",
      "relevance_score": 95,
      "reasoning": "Explanation here...",
      "key_skills": "Skill1, Skill2, Skill3"
    },
    ...
  ]
}`

var rankingTmpl = template.Must(template.New("ranking").Parse(rankingPromptTemplate))

// BuildPrompt renders the ranking prompt with the serialized snapshot
// embedded.
func BuildPrompt(snapshot model.ProfileSnapshot) (string, error) {
	profileJSON, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = rankingTmpl.Execute(&buf, struct{ Profile string }{Profile: string(profileJSON)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
