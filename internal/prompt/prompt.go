// ABOUTME: Instruction templates appended to plain streamed sends
// ABOUTME: Selected by the active prompt name held in ChatState

package prompt

// Template names recognised by Template.
const (
	UserStory = "User Story"
	Epic      = "Epic"
	Diagram   = "Diagram"
)

const userStoryTemplate = `
And strictly follow this below format while generating user story and use bold character where ever required 
**Title**: [Insert User Story Title Here]
**Acceptance criteria** :
[Insert Acceptance criteria Here and follow the below format for acceptance criteria 'As a [type of user], when [a specific situation or trigger], then [the desired outcome or system response].'
				Be sure to include:
				Who the user is (e.g., admin, customer, teacher)
				A specific situation or trigger (e.g., user action, system state)
				The expected result or system behavior] 
**Functional Test Cases**: 
[Insert Functional Test Cases Here]`

const epicTemplate = `
And strictly follow this below format while generating the Epic and use bold character where ever required 
Epic Name: [Clear and descriptive name for the Epic]
Epic Summary: [A brief summary of what this epic is about, covering the main objective and expected outcome.]
Epic Description:
1. Objective: [Describe the primary objective of this epic. What are you trying to achieve? Why is this epic important?]
2. Problem Statement: [Clearly state the problem or challenge this epic is addressing. Why is this problem worth solving?]
3. Scope: [Define the boundaries of the epic. What will be included and what will not be included? Mention any key features, components, or tasks that will fall under this epic.]
4. Success Criteria/Definition of Done: [What are the measurable outcomes or criteria that will indicate this epic is complete and successful?]
5. Dependencies: [Identify any dependencies on other epics, tasks, teams, or external factors that could affect the completion of this epic.]
6. Risks & Mitigations: [Describe any potential risks associated with this epic and how you plan to mitigate them.]
7. Timeline & Milestones:[Provide an estimated timeline for the epic, including key milestones and deadlines.]
8. Stakeholders: [Identify the key stakeholders involved in this epic, such as team members, product owners, or external parties.]`

const diagramTemplate = "\nGenerate a corresponding mermaid code. If you have mermaid code before in the context apply change on top of that as per the user request. Do not generate new diagram all together."

const defaultTemplate = "\nGenerate comprehensive answer for the user query."

// Names lists the named templates in display order.
func Names() []string {
	return []string{UserStory, Epic, Diagram}
}

// Template returns the instruction text for name. Unknown and empty names
// get the default instruction.
func Template(name string) string {
	switch name {
	case UserStory:
		return userStoryTemplate
	case Epic:
		return epicTemplate
	case Diagram:
		return diagramTemplate
	default:
		return defaultTemplate
	}
}

// Known reports whether name selects a named template.
func Known(name string) bool {
	switch name {
	case UserStory, Epic, Diagram:
		return true
	}
	return false
}
