package ai

const AnalyzePromptText = `
# Task Context
You are tasked with extracting **structured brand perception data** from the provided text. The text is a public mention (an article, review, forum thread or AI answer) that discusses a tracked brand and possibly its competitors.

# Background Data
- **Brand:** [%s]
- **Competitors:** [%s]
- **Document_name:** [%s]

The document name may contain hints about the channel the mention was collected from (e.g. *"reddit-thread-42"*). Use it only as context; never quote it.

# Detailed Task Description & Rules
- Work only with statements explicitly present in the text. Do not infer sentiment from outside knowledge about the brand.
- If the text does not discuss the brand or any listed competitor at all, return empty arrays and omit the sentiment label.

## Product Extraction
1. List every product or service of [%s] that the text names, using the spelling from the text.
2. Do not list competitor products.

## Sentiment Extraction
1. **brand_sentiment_label:** the overall stance of the text towards [%s]. One of POSITIVE, NEGATIVE or MIXED.
2. Use MIXED when the text praises some aspects and criticizes others, or when the stance is neutral or unclear.
3. For every competitor from [%s] that the text discusses, add an entry to "competitor_sentiments" keyed by the competitor name **exactly as given in the list**, with the same POSITIVE/NEGATIVE/MIXED labels.
4. Never add competitors that are not in the provided list.

## Keyword Extraction
1. Extract the topics the text associates with the brand or its competitors (e.g. "pricing", "customer support", "onboarding").
2. Keywords are short lowercase noun phrases, not sentences.
3. Extract a keyword only when the text actually discusses that topic, not when it merely contains the word.

## Quote Extraction
1. Copy short verbatim passages that justify the extracted sentiment, one object per passage.
2. Set "entity" to the competitor name when the passage is about a competitor; leave it empty when it is about [%s] itself.
3. Never paraphrase. A quote must appear character for character in the text.

# Examples
## Example 1 — Comparative review
**Brand:** Acme
**Competitors:** Initech,Globex
**Text:**
We switched from Initech to Acme last quarter. Acme's onboarding was painless and support answers within the hour, but the pricing page is genuinely confusing. Initech still wins on raw speed.

**Output:**
{
  "brand_products": [],
  "brand_sentiment_label": "MIXED",
  "keywords": [
    { "keyword": "onboarding" },
    { "keyword": "customer support" },
    { "keyword": "pricing" },
    { "keyword": "performance" }
  ],
  "competitor_sentiments": {
    "Initech": { "label": "POSITIVE" }
  },
  "quotes": [
    { "text": "Acme's onboarding was painless and support answers within the hour", "entity": "" },
    { "text": "the pricing page is genuinely confusing", "entity": "" },
    { "text": "Initech still wins on raw speed", "entity": "Initech" }
  ]
}

## Example 2 — Mention without the brand
**Brand:** Acme
**Competitors:** Initech,Globex
**Text:**
Globex raised prices again. Their enterprise tier is now double what it was in 2023.

**Output:**
{
  "brand_products": [],
  "keywords": [
    { "keyword": "pricing" }
  ],
  "competitor_sentiments": {
    "Globex": { "label": "NEGATIVE" }
  },
  "quotes": [
    { "text": "Globex raised prices again", "entity": "Globex" }
  ]
}

# Thinking Step by Step
Think step-by-step: identify which of the listed entities the text discusses, then the topics it attaches to them, then the stance per entity, and finally collect the supporting quotes.

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "brand_products": ["string"],
  "brand_sentiment_label": "POSITIVE|NEGATIVE|MIXED",
  "keywords": [
    { "keyword": "string" }
  ],
  "competitor_sentiments": {
    "<competitor name>": { "label": "POSITIVE|NEGATIVE|MIXED" }
  },
  "quotes": [
    { "text": "string", "entity": "string" }
  ]
}
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if nothing was found (use empty arrays in that case).
Make sure to follow the rules and output format carefully.
`

const AnalyzePromptCSV = `
# Task Context
You are tasked with extracting **structured brand perception data** from a CSV or tabular dataset. Each row typically carries one collected mention (e.g. exported social listening data with author, date and text columns). The output must follow the exact JSON schema described below.

# Background Data
- **Brand:** [%s]
- **Competitors:** [%s]
- **Document_name:** [%s]
- **CSV_summary:** [%s]

# Instructions for CSV Data
- Use the column headers and the CSV summary to locate the column that carries the mention text; ignore purely technical columns (ids, timestamps, URLs).
- Treat all rows of the provided excerpt as one body of mentions and produce a **single combined analysis** for it.
- Sentiment labels describe the overall stance across the rows: use MIXED when rows disagree.
- Quotes are copied verbatim from individual cells; never merge text from different rows into one quote.

## Product Extraction
1. List every product or service of [%s] named anywhere in the rows.
2. Do not list competitor products.

## Sentiment Extraction
1. **brand_sentiment_label:** the overall stance of the rows towards [%s]. One of POSITIVE, NEGATIVE or MIXED.
2. For every competitor from [%s] that the rows discuss, add an entry to "competitor_sentiments" keyed by the competitor name exactly as given in the list.
3. Never add competitors that are not in the provided list.

## Keyword Extraction
1. Extract the topics the rows associate with the brand or its competitors.
2. Keywords are short lowercase noun phrases, not sentences.

## Quote Extraction
1. Copy short verbatim passages that justify the extracted sentiment, one object per passage.
2. Set "entity" to the competitor name when the passage is about a competitor; leave it empty when it is about the brand itself.

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "brand_products": ["string"],
  "brand_sentiment_label": "POSITIVE|NEGATIVE|MIXED",
  "keywords": [
    { "keyword": "string" }
  ],
  "competitor_sentiments": {
    "<competitor name>": { "label": "POSITIVE|NEGATIVE|MIXED" }
  },
  "quotes": [
    { "text": "string", "entity": "string" }
  ]
}
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if nothing was found (use empty arrays in that case).
Make sure to follow the rules and output format carefully.
`

const BriefSectionPrompt = `
# Task Context
You are a brand strategist writing one section of an executive brief about the public perception of a brand. You summarize a single narrative: a group of related topics together with their sentiment, strength and supporting evidence.

# Background Data
The data is provided in the following format:

Narrative: <name>
Topics:
<topic>: sentiment <score>, strength <score>
Insights:
<kind> | <topic> | <context>
- "<evidence quote>"

## Data
%s

# Detailed Task Description & Rules
- Base every statement only on the provided data. Never add outside knowledge about the brand.
- Cover the strongest topics first.
- Whenever a sentence relies on a topic, cite the topic by wrapping its exact name in square brackets, e.g. [pricing].
- Cite only topic names present in the data. Never invent citations.
- Sentiment scores range from -100 (uniformly negative) to 100 (uniformly positive); strength ranges from 0 to 100 relative to the most central topic.
- Write 2-4 sentences of plain prose. No headings, no lists.

# Output Formatting
Return only the section text. No JSON, no markdown headings, no commentary.
`

const BriefPrompt = `
# Task Context
You are a brand strategist writing the final executive brief about the public perception of the brand "%s". You are given one pre-written summary per narrative and merge them into a single brief.

# Background Data
## Narrative summaries
%s

# Detailed Task Description & Rules
- Merge the summaries into one coherent brief: open with the overall perception, then the biggest opportunities and threats, then the contested topics.
- Keep every topic citation from the summaries exactly as written, wrapped in square brackets, e.g. [pricing].
- Do not introduce topics or citations that are not present in the summaries.
- Do not repeat near-identical statements from different summaries; combine them instead.
- The brief is 2-4 paragraphs of plain prose addressed to an executive reader. No headings, no lists.

# Output Formatting
Return only the brief text. No JSON, no markdown headings, no commentary.
`
