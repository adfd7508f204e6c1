package prompts

import "strings"

// domainGuidance holds the evaluation standards for each known target domain.
var domainGuidance = map[string]string{
	"software-engineer": `Focus on technical skills, programming languages, software development practices, system design, and project experience.
Look for: coding languages, frameworks, databases, cloud platforms, DevOps tools, software architecture, algorithms, data structures.
Evaluate: technical depth, project complexity, problem-solving abilities, code quality practices, team collaboration.`,

	"data-scientist": `Evaluate data analysis skills, machine learning expertise, statistical knowledge, programming proficiency, and research experience.
Look for: Python/R, SQL, machine learning libraries, statistical methods, data visualization, big data tools, research publications.
Evaluate: analytical thinking, model building, data storytelling, business impact, technical communication.`,

	"marketing": `Assess marketing strategy knowledge, campaign management, digital marketing skills, analytics understanding, and creative abilities.
Look for: digital marketing channels, analytics tools, campaign metrics, content creation, brand management, market research.
Evaluate: strategic thinking, creativity, data-driven decision making, ROI optimization, customer understanding.`,

	"product-manager": `Review product strategy, stakeholder management, technical understanding, market analysis, and leadership experience.
Look for: product lifecycle, user research, roadmap planning, cross-functional collaboration, metrics tracking, market analysis.
Evaluate: strategic vision, leadership skills, technical acumen, user empathy, business impact.`,

	"design": `Focus on design thinking, user experience, visual design skills, portfolio quality, and creative problem-solving.
Look for: design tools, UX/UI principles, user research, prototyping, design systems, accessibility, portfolio projects.
Evaluate: creative thinking, user-centered design, visual aesthetics, problem-solving, design process.`,

	"sales": `Evaluate sales performance, relationship building, negotiation skills, CRM proficiency, and revenue generation.
Look for: sales metrics, CRM tools, lead generation, client relationships, negotiation experience, revenue targets.
Evaluate: communication skills, relationship building, results orientation, persistence, customer focus.`,
}

const genericGuidance = "Provide general professional analysis focusing on relevant skills and experience."

// DefaultDomain is used when the caller names no target domain.
const DefaultDomain = "software-engineer"

// DefaultTargetRole is the skill graph role when none is given.
const DefaultTargetRole = "Full Stack Developer"

// DomainGuidance returns the standards for domain, or a generic instruction.
func DomainGuidance(domain string) string {
	if g, ok := domainGuidance[strings.ToLower(strings.TrimSpace(domain))]; ok {
		return g
	}
	return genericGuidance
}

// KnownDomains lists the domains with dedicated guidance.
func KnownDomains() []string {
	return []string{"software-engineer", "data-scientist", "marketing", "product-manager", "design", "sales"}
}

// DisplayDomain turns a domain slug into words ("product-manager" -> "product manager").
func DisplayDomain(domain string) string {
	return strings.ReplaceAll(strings.TrimSpace(domain), "-", " ")
}
