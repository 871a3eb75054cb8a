// Package prompts builds the natural-language prompts sent to the LLM for
// explanations, quiz generation, answer grading, and chat.
package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"aitutor/internal/model"
	"aitutor/internal/topics"
)

// Explanation builds a content-type specific prompt about baseTopic. The raw
// query is consulted for level hints ("exactly 5 paragraphs" style requests).
func Explanation(ct topics.ContentType, baseTopic, query string) string {
	var sb strings.Builder
	switch ct {
	case topics.ContentIntroduction:
		fmt.Fprintf(&sb, "Provide ONLY an introduction and background context for %s.\n\n", baseTopic)
		sb.WriteString("Focus on:\n")
		fmt.Fprintf(&sb, "- What %s is and its purpose\n", baseTopic)
		sb.WriteString("- Historical development and origins\n")
		sb.WriteString("- Why it was created or developed\n")
		sb.WriteString("- Its significance and importance\n")
		sb.WriteString("- Context and background information\n\n")
		sb.WriteString("Do NOT include definitions, examples, applications, or detailed explanations. ONLY provide introduction and background context.\n\n")
		sb.WriteString("Write 3-5 well-structured paragraphs, each 8-12 sentences long. Separate paragraphs with blank lines.")
	case topics.ContentDefinition:
		fmt.Fprintf(&sb, "Provide ONLY a clear, precise definition of %s.\n\n", baseTopic)
		sb.WriteString("Focus on:\n")
		fmt.Fprintf(&sb, "- What %s means exactly\n", baseTopic)
		sb.WriteString("- Core meaning and fundamental characteristics\n")
		sb.WriteString("- Essential properties and key attributes\n")
		fmt.Fprintf(&sb, "- What distinguishes %s from similar concepts\n\n", baseTopic)
		sb.WriteString("Do NOT include examples, applications, explanations, or background. ONLY provide the definition.\n\n")
		sb.WriteString("Write 2-4 well-structured paragraphs, each 8-12 sentences long. Separate paragraphs with blank lines.")
	case topics.ContentExamples:
		fmt.Fprintf(&sb, "Provide ONLY specific examples and use cases of %s.\n\n", baseTopic)
		sb.WriteString("Focus on:\n")
		fmt.Fprintf(&sb, "- Concrete examples of %s\n", baseTopic)
		sb.WriteString("- Real-world use cases\n")
		sb.WriteString("- Code snippets if applicable\n")
		sb.WriteString("- Practical illustrations\n")
		fmt.Fprintf(&sb, "- Specific scenarios where %s is used\n\n", baseTopic)
		sb.WriteString("Do NOT include definitions, explanations, or applications. ONLY provide examples.\n\n")
		sb.WriteString("Write 3-5 well-structured paragraphs with examples, each 8-12 sentences long. Separate paragraphs with blank lines.")
	case topics.ContentApplications:
		fmt.Fprintf(&sb, "Provide ONLY real-world applications and practical uses of %s.\n\n", baseTopic)
		sb.WriteString("Focus on:\n")
		fmt.Fprintf(&sb, "- Where %s is used in industry\n", baseTopic)
		sb.WriteString("- Applications in research and academia\n")
		sb.WriteString("- Practical uses in daily life\n")
		sb.WriteString("- Various domains and fields where it's applied\n")
		sb.WriteString("- Real-world impact and benefits\n\n")
		sb.WriteString("Do NOT include examples, definitions, or explanations. ONLY provide applications.\n\n")
		sb.WriteString("Write 3-5 well-structured paragraphs, each 8-12 sentences long. Separate paragraphs with blank lines.")
	case topics.ContentProblems:
		fmt.Fprintf(&sb, "Provide ONLY practice problems, exercises, and questions related to %s.\n\n", baseTopic)
		sb.WriteString("Focus on:\n")
		sb.WriteString("- Problem statements and exercises\n")
		sb.WriteString("- Practice questions for students\n")
		sb.WriteString("- Hands-on exercises\n")
		sb.WriteString("- Problems to solve and practice\n\n")
		sb.WriteString("Do NOT include solutions, definitions, or explanations. ONLY provide problems and exercises.\n\n")
		sb.WriteString("Write 3-5 well-structured paragraphs with problems, each containing multiple practice questions. Separate paragraphs with blank lines.")
	case topics.ContentAdvancedConcepts:
		fmt.Fprintf(&sb, "Provide ONLY advanced related concepts, theories, and topics connected to %s.\n\n", baseTopic)
		sb.WriteString("Focus on:\n")
		fmt.Fprintf(&sb, "- Cutting-edge developments in %s\n", baseTopic)
		sb.WriteString("- Advanced theories and concepts\n")
		sb.WriteString("- Related research areas\n")
		sb.WriteString("- Complex and advanced topics\n")
		sb.WriteString("- State-of-the-art developments\n\n")
		sb.WriteString("Do NOT include basic explanations. ONLY provide advanced concepts.\n\n")
		sb.WriteString("Write 4-6 well-structured paragraphs, each 8-12 sentences long. Separate paragraphs with blank lines.")
	case topics.ContentAdvancedProblems:
		fmt.Fprintf(&sb, "Provide ONLY advanced problems, challenges, and complex exercises related to %s.\n\n", baseTopic)
		sb.WriteString("Focus on:\n")
		sb.WriteString("- Difficult and challenging problems\n")
		sb.WriteString("- Research-level questions\n")
		sb.WriteString("- Complex scenarios and exercises\n")
		sb.WriteString("- Advanced problem-solving challenges\n\n")
		sb.WriteString("Do NOT include solutions or basic problems. ONLY provide advanced problems.\n\n")
		sb.WriteString("Write 3-5 well-structured paragraphs with advanced problems, each containing challenging questions. Separate paragraphs with blank lines.")
	case topics.ContentResearchPapers:
		fmt.Fprintf(&sb, "Provide ONLY information about research papers, academic resources, and scholarly work related to %s.\n\n", baseTopic)
		sb.WriteString("Focus on:\n")
		fmt.Fprintf(&sb, "- Important research papers on %s\n", baseTopic)
		sb.WriteString("- Key researchers and their contributions\n")
		sb.WriteString("- Academic journals and publications\n")
		sb.WriteString("- Research directions and trends\n")
		sb.WriteString("- Scholarly resources and references\n\n")
		sb.WriteString("Do NOT include explanations or definitions. ONLY provide research paper information and academic resources.\n\n")
		sb.WriteString("Write 3-5 well-structured paragraphs, each 8-12 sentences long. Separate paragraphs with blank lines.")
	case topics.ContentExplanation:
		lower := strings.ToLower(query)
		if strings.Contains(lower, "exactly 5") || strings.Contains(lower, "5 comprehensive paragraphs") {
			fmt.Fprintf(&sb, "Provide a detailed explanation of %s with EXACTLY 5 comprehensive paragraphs.\n\n", baseTopic)
			sb.WriteString("Each paragraph should be 8-12 sentences and cover:\n")
			fmt.Fprintf(&sb, "1) How %s works - mechanisms and processes\n", baseTopic)
			sb.WriteString("2) Key principles and fundamental mechanisms\n")
			sb.WriteString("3) Important concepts and relationships\n")
			sb.WriteString("4) Technical details and processes\n")
			fmt.Fprintf(&sb, "5) Why understanding %s matters\n\n", baseTopic)
			sb.WriteString("Do NOT include examples or applications. ONLY provide explanation.\n\n")
			sb.WriteString("Write EXACTLY 5 well-structured paragraphs, each 8-12 sentences long. Separate paragraphs with blank lines.")
		} else {
			fmt.Fprintf(&sb, "Provide a comprehensive explanation of %s covering how it works.\n\n", baseTopic)
			sb.WriteString("Focus on:\n")
			fmt.Fprintf(&sb, "- How %s functions and operates\n", baseTopic)
			sb.WriteString("- Key principles and mechanisms\n")
			sb.WriteString("- Technical details and processes\n")
			sb.WriteString("- Important concepts and relationships\n\n")
			fmt.Fprintf(&sb, "Do NOT include examples, applications, or definitions. ONLY provide explanation of how %s works.\n\n", baseTopic)
			sb.WriteString("Write 4-6 well-structured paragraphs, each 8-12 sentences long. Separate paragraphs with blank lines.")
		}
	default:
		fmt.Fprintf(&sb, "Explain %s comprehensively for students. Provide a detailed explanation that includes:\n\n", baseTopic)
		fmt.Fprintf(&sb, "1. A clear definition and overview of %s\n", baseTopic)
		sb.WriteString("2. Fundamental principles and basic concepts\n")
		sb.WriteString("3. Core concepts and key ideas\n")
		sb.WriteString("4. Real-world applications and examples\n")
		fmt.Fprintf(&sb, "5. Why %s is important\n\n", baseTopic)
		sb.WriteString("IMPORTANT FORMATTING REQUIREMENTS:\n")
		sb.WriteString("- Write EXACTLY 6-10 well-structured paragraphs\n")
		sb.WriteString("- Each paragraph should be 8-12 sentences long\n")
		sb.WriteString("- Separate each paragraph with a blank line (double newline)\n")
		fmt.Fprintf(&sb, "- Each paragraph should cover a distinct aspect of %s in depth\n", baseTopic)
		sb.WriteString("- Make the explanation comprehensive, educational, and clear with substantial detail\n")
		sb.WriteString("- Use proper paragraph breaks - do NOT write as one continuous block of text\n")
		sb.WriteString("- Each paragraph should be substantial (at least 150-200 words per paragraph)\n\n")
		fmt.Fprintf(&sb, "Now provide a comprehensive explanation of %s with 6-10 well-separated paragraphs, each being 8-12 sentences long.", baseTopic)
	}
	return sb.String()
}

// QuizGeneration asks for count numbered questions about topic. Callers pass
// twice the requested question count so clients can pick a subset.
func QuizGeneration(topic string, count int, difficulty model.Difficulty) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert educator creating a quiz about %s at %s difficulty level.\n\n", topic, difficulty)
	fmt.Fprintf(&sb, "Generate exactly %d diverse, educational quiz questions about %s. Each question should:\n", count, topic)
	sb.WriteString("1. Be unique and different from others\n")
	fmt.Fprintf(&sb, "2. Test actual understanding of %s\n", topic)
	fmt.Fprintf(&sb, "3. Be appropriate for %s level\n", difficulty)
	sb.WriteString("4. Cover different aspects: concepts, applications, principles, examples, comparisons\n")
	sb.WriteString("5. End with a question mark\n\n")
	fmt.Fprintf(&sb, "Format: Write each question on a new line, numbered 1-%d. Do NOT use phrases like \"Sample question\" or generic templates.\n", count)
	sb.WriteString("Make each question specific, detailed, and educational.\n\n")
	sb.WriteString("Example format:\n")
	fmt.Fprintf(&sb, "1. What is the primary purpose of [specific concept] in %s?\n", topic)
	fmt.Fprintf(&sb, "2. How does [specific method] differ from [another method] in %s?\n", topic)
	fmt.Fprintf(&sb, "3. Explain the role of [specific component] in %s.\n\n", topic)
	fmt.Fprintf(&sb, "Now generate %d unique questions about %s:", count, topic)
	return sb.String()
}

// Grading asks the LLM to grade a single answer and reply in the literal
// "Marks: <n>" / "Feedback: <text>" format the evaluator parses.
func Grading(questionText, answer string, maxMarks float64) string {
	marks := formatMarks(maxMarks)
	var sb strings.Builder
	sb.WriteString("You are evaluating a quiz answer. Award marks based on correctness and completeness.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n", questionText)
	fmt.Fprintf(&sb, "Student Answer: %s\n", answer)
	fmt.Fprintf(&sb, "Maximum Marks: %s\n\n", marks)
	fmt.Fprintf(&sb, "Evaluate the answer and award marks (0 to %s):\n", marks)
	fmt.Fprintf(&sb, "- Full marks (%s): Answer is correct and demonstrates good understanding\n", marks)
	fmt.Fprintf(&sb, "- Partial marks: Answer is partially correct or shows some understanding\n")
	sb.WriteString("- Zero marks (0): Answer is completely wrong or irrelevant\n\n")
	sb.WriteString("IMPORTANT: Be fair and generous. If the answer shows understanding of the topic, award marks even if not perfect.\n\n")
	sb.WriteString("Format your response EXACTLY as:\n")
	fmt.Fprintf(&sb, "Marks: [number between 0 and %s]\n", marks)
	sb.WriteString("Feedback: [brief explanation of why these marks were awarded]\n\n")
	sb.WriteString("Example responses:\n")
	sb.WriteString("Marks: 8\n")
	sb.WriteString("Feedback: Good answer showing understanding of the concept, minor details missing\n\n")
	sb.WriteString("Marks: 5\n")
	sb.WriteString("Feedback: Partially correct, shows some knowledge but incomplete\n\n")
	sb.WriteString("Marks: 0\n")
	sb.WriteString("Feedback: Incorrect or irrelevant answer\n\n")
	sb.WriteString("Now evaluate:")
	return sb.String()
}

// Chat builds the conversational prompt from system instructions, up to the
// three most recent remembered turns, and the current message.
func Chat(message string, history []model.Conversation) string {
	var sb strings.Builder
	sb.WriteString("You are an expert AI educational assistant. Answer the student's question directly and comprehensively.\n\n")
	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Provide a direct, accurate answer to the question asked\n")
	sb.WriteString("2. Give detailed explanations (at least 4-6 sentences)\n")
	sb.WriteString("3. Use clear, simple language that students can understand\n")
	sb.WriteString("4. Include examples and real-world applications when relevant\n")
	sb.WriteString("5. Be specific and factual - avoid generic responses\n")
	sb.WriteString("6. If you don't know something, say so honestly\n")
	sb.WriteString("7. Focus on AI, machine learning, deep learning, and related technical topics\n\n")
	sb.WriteString("DO NOT:\n")
	sb.WriteString("- Give generic responses like \"This is an interesting topic\"\n")
	sb.WriteString("- Ask the student to provide more details if the question is clear\n")
	sb.WriteString("- Redirect to other topics unnecessarily\n")
	sb.WriteString("- Use placeholder text or incomplete answers\n")

	if len(history) > 0 {
		recent := history
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		sb.WriteString("\nRecent conversation history:\n")
		for _, conv := range recent {
			sb.WriteString("Student: " + conv.UserMessage + "\n")
			sb.WriteString("Assistant: " + conv.AIResponse + "\n")
		}
	}

	sb.WriteString("\nStudent's current question: " + message + "\n")
	sb.WriteString("\nProvide a helpful, detailed, and educational response:")
	return sb.String()
}

// YouTubeTitle asks for a single plausible video title for the topic, used to
// label the resource link.
func YouTubeTitle(topic string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Provide ONE specific, popular, educational YouTube video title for learning %s.\n", topic)
	sb.WriteString("Respond with ONLY the video title, nothing else.")
	return sb.String()
}

func formatMarks(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
