// Package topics validates quiz topics against an AI-subject allowlist and
// classifies free-text explain queries into content types.
package topics

import "strings"

// aiKeywords is the allowlist of AI-related topics and keywords. A topic is
// accepted when its lowercased form equals or contains any entry.
var aiKeywords = []string{
	// Core AI concepts
	"artificial intelligence", "ai", "machine learning", "ml", "deep learning", "dl",
	"neural networks", "neural network", "artificial neural network", "ann",
	"supervised learning", "unsupervised learning", "reinforcement learning",
	"transfer learning", "semi-supervised learning", "active learning",

	// AI subfields
	"natural language processing", "nlp", "computer vision", "cv", "speech recognition",
	"robotics", "expert systems", "knowledge representation", "reasoning",
	"planning", "search algorithms", "optimization", "genetic algorithms",

	// Deep learning
	"convolutional neural network", "cnn", "recurrent neural network", "rnn",
	"long short-term memory", "lstm", "gated recurrent unit", "gru",
	"transformer", "attention mechanism", "bert", "gpt", "generative ai",
	"generative adversarial network", "gan", "variational autoencoder", "vae",
	"autoencoder", "encoder-decoder", "seq2seq",

	// Machine learning algorithms
	"linear regression", "logistic regression", "decision tree", "random forest",
	"support vector machine", "svm", "k-means", "k-nearest neighbors", "knn",
	"naive bayes", "gradient boosting", "xgboost", "adaboost",
	"clustering", "classification", "regression", "dimensionality reduction",
	"principal component analysis", "pca", "t-sne",

	// AI applications
	"image recognition", "object detection", "face recognition", "image classification",
	"text classification", "sentiment analysis", "named entity recognition", "ner",
	"machine translation", "text generation", "chatbot", "virtual assistant",
	"recommendation system", "recommender system", "anomaly detection",
	"predictive analytics", "time series forecasting",

	// Tools and frameworks
	"tensorflow", "pytorch", "keras", "scikit-learn", "sklearn",
	"opencv", "nltk", "spacy", "hugging face", "transformers",

	// Ethics and deployment
	"ai ethics", "bias in ai", "fairness", "explainable ai", "xai",
	"model interpretability", "adversarial attacks", "federated learning",
	"edge ai", "quantization", "model compression",

	// Advanced topics
	"q-learning", "policy gradient", "actor-critic",
	"meta-learning", "few-shot learning", "zero-shot learning", "continual learning",
	"multi-task learning", "domain adaptation", "self-supervised learning",
	"contrastive learning", "representation learning", "feature learning",

	// Architectures
	"resnet", "vgg", "inception", "mobilenet", "yolo", "r-cnn",
	"u-net", "diffusion models", "stable diffusion",

	// NLP specific
	"word embeddings", "word2vec", "glove", "fasttext", "elmo",
	"transformer architecture", "self-attention", "multi-head attention",
	"positional encoding", "tokenization", "lemmatization", "stemming",
	"part-of-speech tagging", "dependency parsing", "semantic analysis",

	// Computer vision specific
	"image segmentation", "semantic segmentation", "instance segmentation",
	"object tracking", "optical flow", "feature extraction", "edge detection",
	"image enhancement", "super-resolution", "style transfer",

	// Data science for AI
	"data preprocessing", "feature engineering", "feature selection",
	"cross-validation", "hyperparameter tuning", "model evaluation",
	"confusion matrix", "roc curve", "precision", "recall", "f1 score",
}

// aiPatterns catches phrasings the keyword list misses, such as "ai " at the
// start of a longer query.
var aiPatterns = []string{
	"artificial intelligence",
	"machine learning",
	"deep learning",
	"neural network",
	"ai ",
	" ml ",
	" nlp ",
	"computer vision",
	"natural language",
}

// IsAITopic reports whether topic is AI-related. Empty or whitespace-only
// topics are not.
func IsAITopic(topic string) bool {
	t := strings.ToLower(strings.TrimSpace(topic))
	if t == "" {
		return false
	}
	for _, kw := range aiKeywords {
		if t == kw || strings.Contains(t, kw) {
			return true
		}
	}
	for _, p := range aiPatterns {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// Suggestions returns a curated list of AI topics for the suggestions endpoint.
func Suggestions() []string {
	return []string{
		"Machine Learning",
		"Deep Learning",
		"Neural Networks",
		"Natural Language Processing",
		"Computer Vision",
		"Reinforcement Learning",
		"Convolutional Neural Networks",
		"Transformers",
		"Generative AI",
		"Supervised Learning",
		"Unsupervised Learning",
		"Image Recognition",
		"Text Classification",
		"Sentiment Analysis",
		"Object Detection",
	}
}

// ContentType identifies what kind of explanation a query asks for.
type ContentType string

const (
	ContentComprehensive    ContentType = ""
	ContentIntroduction     ContentType = "introduction"
	ContentDefinition       ContentType = "definition"
	ContentExamples         ContentType = "examples"
	ContentApplications     ContentType = "applications"
	ContentProblems         ContentType = "problems"
	ContentAdvancedConcepts ContentType = "advanced_concepts"
	ContentAdvancedProblems ContentType = "advanced_problems"
	ContentResearchPapers   ContentType = "research_papers"
	ContentExplanation      ContentType = "explanation"
)

// afterMarker returns the text following the first occurrence of marker in
// query, cut at the first period, or "" when the marker is absent.
func afterMarker(query, marker string) string {
	lower := strings.ToLower(query)
	idx := strings.Index(lower, marker)
	if idx < 0 {
		return ""
	}
	rest := query[idx+len(marker):]
	if dot := strings.Index(rest, "."); dot >= 0 {
		rest = rest[:dot]
	}
	return strings.TrimSpace(rest)
}

// DetectContentType classifies an explain query and extracts the base topic
// it is about. Rules are ordered most specific first so "advanced problems
// related to X" does not match the plain problems rule. When no rule fires
// the content type is ContentComprehensive and the base topic is the query
// itself.
func DetectContentType(query string) (ContentType, string) {
	base := strings.TrimSpace(query)
	lower := strings.ToLower(query)
	ct := ContentComprehensive

	has := func(s string) bool { return strings.Contains(lower, s) }
	extract := func(marker string) {
		if b := afterMarker(query, marker); b != "" {
			base = b
		}
	}

	switch {
	case has("research papers") || (has("research") && has("papers")):
		ct = ContentResearchPapers
		extract("related to ")
	case has("advanced") && has("problems"):
		ct = ContentAdvancedProblems
		extract("related to ")
	case has("advanced") && has("concepts"):
		ct = ContentAdvancedConcepts
		extract("for ")
	case has("problems") && (has("practice") || has("exercises")):
		ct = ContentProblems
		if afterMarker(query, "related to ") != "" {
			extract("related to ")
		} else {
			extract("of ")
		}
	case has("applications"):
		ct = ContentApplications
		extract("of ")
	case has("examples"):
		ct = ContentExamples
		extract("of ")
	case has("definition"):
		ct = ContentDefinition
		extract("of ")
	case has("introduction"):
		ct = ContentIntroduction
		extract("for ")
	case has("detailed explanation") || has("comprehensive explanation"):
		ct = ContentExplanation
		if b := afterMarker(query, "of "); b != "" {
			if words := strings.Fields(b); len(words) > 0 {
				base = words[0]
			}
		}
	}

	base = cleanBaseTopic(base)
	if base == "" {
		base = strings.TrimSpace(query)
	}
	return ct, base
}

// cleanBaseTopic strips trailing punctuation and instruction-style suffixes
// and caps overly long extractions at three words.
func cleanBaseTopic(base string) string {
	base = strings.Trim(base, ".,;:!? ")
	lower := strings.ToLower(base)
	for _, phrase := range []string{" focus on", " do not", " include", " explain", " provide"} {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			base = strings.TrimSpace(base[:idx])
			lower = strings.ToLower(base)
		}
	}
	if words := strings.Fields(base); len(words) > 3 {
		base = strings.Join(words[:3], " ")
	}
	if idx := strings.Index(base, " - "); idx >= 0 {
		base = strings.TrimSpace(base[:idx])
	}
	return strings.Trim(base, ".,;:!? ")
}
