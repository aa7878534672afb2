package topics

import "regexp"

// Subjects.
const (
	Mathematics     = "Mathematics"
	Physics         = "Physics"
	Chemistry       = "Chemistry"
	Biology         = "Biology"
	History         = "History"
	Geography       = "Geography"
	English         = "English"
	ComputerScience = "Computer Science"
	Economics       = "Economics"
)

// TopicRule maps a pattern to a topic and, optionally, the subject it
// implies.
type TopicRule struct {
	Pattern *regexp.Regexp
	Topic   string
	Subject string
}

// SubjectRule maps a pattern to a subject.
type SubjectRule struct {
	Pattern *regexp.Regexp
	Subject string
}

func word(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + expr + `)\b`)
}

// TopicRules is checked before SubjectRules. The first match wins, so
// within a subject the more specific phrasing must come first.
var TopicRules = []TopicRule{
	// Physics
	{word(`specific heat(?: capacity)?`), "specific heat capacity", Physics},
	{word(`latent heat`), "latent heat", Physics},
	{word(`newton'?s (?:first|second|third) law|laws? of motion`), "laws of motion", Physics},
	{word(`projectile(?: motion)?`), "projectile motion", Physics},
	{word(`ohm'?s law|resistance|circuits?`), "electric circuits", Physics},
	{word(`refraction|reflection|lens(?:es)?|optics`), "optics", Physics},
	{word(`wave(?:length|s)?|frequency|amplitude`), "waves", Physics},
	{word(`momentum|collisions?`), "momentum", Physics},
	{word(`gravity|gravitation(?:al)?`), "gravitation", Physics},
	{word(`kinetic energy|potential energy|energy`), "energy", Physics},

	// Chemistry
	{word(`chemical equilibrium|equilibrium|le chatelier`), "chemical equilibrium", Chemistry},
	{word(`acids?|bases?|ph scale`), "acids and bases", Chemistry},
	{word(`periodic table|groups? and periods`), "periodic table", Chemistry},
	{word(`covalent bonds?|ionic bonds?|chemical bond(?:ing|s)?`), "chemical bonding", Chemistry},
	{word(`stoichiometry|moles?|molar mass`), "stoichiometry", Chemistry},
	{word(`redox|oxidation|reduction`), "redox reactions", Chemistry},
	{word(`organic chemistry|hydrocarbons?|alkanes?|alkenes?`), "organic chemistry", Chemistry},

	// Biology
	{word(`photosynthesis|chlorophyll`), "photosynthesis", Biology},
	{word(`cellular respiration|respiration|mitochondri(?:a|on)`), "cellular respiration", Biology},
	{word(`mitosis|meiosis|cell division`), "cell division", Biology},
	{word(`dna|rna|genes?|genetics|heredity`), "genetics", Biology},
	{word(`evolution|natural selection`), "evolution", Biology},
	{word(`ecosystems?|food chains?|food webs?`), "ecosystems", Biology},
	{word(`digestive system|digestion`), "digestive system", Biology},

	// Mathematics
	{word(`quadratic equations?|quadratics?`), "quadratic equations", Mathematics},
	{word(`linear equations?`), "linear equations", Mathematics},
	{word(`pythagoras|pythagorean theorem`), "pythagorean theorem", Mathematics},
	{word(`derivatives?|differentiation`), "differentiation", Mathematics},
	{word(`integrals?|integration`), "integration", Mathematics},
	{word(`probability`), "probability", Mathematics},
	{word(`trigonometry|sine|cosine|tangent`), "trigonometry", Mathematics},
	{word(`fractions?`), "fractions", Mathematics},
	{word(`algebra`), "algebra", Mathematics},
	{word(`geometry|triangles?|circles?`), "geometry", Mathematics},

	// History
	{word(`world war (?:i|1|one)|first world war|ww1`), "world war i", History},
	{word(`world war (?:ii|2|two)|second world war|ww2`), "world war ii", History},
	{word(`french revolution`), "french revolution", History},
	{word(`industrial revolution`), "industrial revolution", History},
	{word(`cold war`), "cold war", History},
	{word(`roman empire|ancient rome`), "roman empire", History},

	// Geography
	{word(`plate tectonics|earthquakes?|volcano(?:es)?`), "plate tectonics", Geography},
	{word(`climate change|global warming`), "climate change", Geography},
	{word(`water cycle|precipitation|evaporation`), "water cycle", Geography},
	{word(`rivers?|erosion`), "rivers and erosion", Geography},

	// English
	{word(`shakespeare|hamlet|macbeth`), "shakespeare", English},
	{word(`metaphors?|similes?|figurative language`), "figurative language", English},
	{word(`parts of speech|nouns?|verbs?|adjectives?`), "grammar", English},
	{word(`essay writing|thesis statement`), "essay writing", English},

	// Computer Science
	{word(`sorting algorithms?|bubble sort|merge sort|quicksort`), "sorting algorithms", ComputerScience},
	{word(`binary search`), "binary search", ComputerScience},
	{word(`recursion|recursive`), "recursion", ComputerScience},
	{word(`data structures?|linked lists?|stacks?|queues?`), "data structures", ComputerScience},
	{word(`binary numbers?|binary`), "binary numbers", ComputerScience},

	// Economics
	{word(`supply and demand`), "supply and demand", Economics},
	{word(`inflation`), "inflation", Economics},
}

// SubjectRules is consulted only when no topic rule matches.
var SubjectRules = []SubjectRule{
	{word(`math(?:s|ematics)?|calculus|arithmetic|equations?`), Mathematics},
	{word(`physics|force|velocity|acceleration|electricity|magnetism`), Physics},
	{word(`chemistry|chemical|molecules?|atoms?|elements?|reactions?`), Chemistry},
	{word(`biology|cells?|organisms?|anatomy|plants?|animals?`), Biology},
	{word(`history|historical|empire|revolution|war|ancient|medieval`), History},
	{word(`geography|continents?|countries|maps?|climate|mountains?`), Geography},
	{word(`english|grammar|literature|poetry|poems?|novels?|writing`), English},
	{word(`programming|computer science|coding|algorithms?|software|python|golang`), ComputerScience},
	{word(`economics|economy|markets?|trade|gdp`), Economics},
}
