// Package agent runs the three-stage solve pipeline: a researcher breaks
// the problem down, a developer writes the code, a tester writes test cases.
package agent

import (
	"fmt"
	"strings"
)

// Persona is the role a stage speaks with. It becomes the system prompt.
type Persona struct {
	Role      string
	Goal      string
	Backstory string
}

var (
	researcher = Persona{
		Role: "Research Analyst",
		Goal: "Research and analyze the problem thoroughly.",
		Backstory: "You are an expert in problem analysis and research. You excel at" +
			" understanding requirements, spotting edge cases, and identifying common pitfalls.",
	}

	developer = Persona{
		Role: "Developer",
		Goal: "Develop high-quality, correct, and well-documented software code" +
			" based on provided tasks and requirements.",
		Backstory: "You are a skilled software developer focused on implementing solutions" +
			" accurately based on requirements. You write clean, efficient, and" +
			" well-commented code following best practices.",
	}

	tester = Persona{
		Role: "Tester",
		Goal: "Ensure software quality and reliability by creating comprehensive test" +
			" cases and verifying code correctness against requirements.",
		Backstory: "You are a meticulous Quality Assurance expert with extensive experience" +
			" in software testing. You excel at identifying edge cases, creating" +
			" thorough test plans, and critically analyzing code behavior against" +
			" expected outcomes.",
	}
)

// System renders the persona as a system prompt.
func (p Persona) System() string {
	return fmt.Sprintf("You are a %s. %s\n\n%s", p.Role, p.Backstory, p.Goal)
}

func breakdownPrompt(question, example, constraints string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the provided coding problem:\n")
	fmt.Fprintf(&sb, "Question: %q\n", question)
	fmt.Fprintf(&sb, "Examples: %q\n", example)
	fmt.Fprintf(&sb, "Constraints: %q\n\n", constraints)
	sb.WriteString("Deeply understand the requirements, examples, and constraints.\n")
	sb.WriteString("Break down the problem into a clear, sequential list of\n")
	sb.WriteString("software development tasks required to create a working solution.")
	return sb.String()
}

func solutionPrompt(breakdown string) string {
	var sb strings.Builder
	sb.WriteString("Based on the provided breakdown of software development tasks,\n")
	sb.WriteString("write the actual Python code that solves the original problem.\n")
	sb.WriteString("Ensure the code is well-commented, follows best practices, and correctly\n")
	sb.WriteString("implements the logic required by the problem description and examples.\n")
	sb.WriteString("Return the solution in a fenced code block.\n\n")
	sb.WriteString("Problem breakdown:\n")
	sb.WriteString(breakdown)
	return sb.String()
}

func testCasesPrompt(question, example, constraints, solution string) string {
	var sb strings.Builder
	sb.WriteString("Based on the original problem description, examples, constraints,\n")
	sb.WriteString("and the provided code solution, create a comprehensive set of test cases.\n")
	sb.WriteString("Include edge cases, base cases, and cases derived from the examples\n")
	sb.WriteString("and constraints.\n\n")
	sb.WriteString("Format the test cases as a Python list in a fenced code block:\n")
	sb.WriteString("```python\n")
	sb.WriteString("test_cases = [\n")
	sb.WriteString("    (input1, input2, ..., expected_output1),\n")
	sb.WriteString("    (input3, input4, ..., expected_output2),\n")
	sb.WriteString("]\n")
	sb.WriteString("```\n\n")
	fmt.Fprintf(&sb, "Question: %q\n", question)
	fmt.Fprintf(&sb, "Examples: %q\n", example)
	fmt.Fprintf(&sb, "Constraints: %q\n\n", constraints)
	sb.WriteString("Code solution:\n")
	sb.WriteString(solution)
	return sb.String()
}
