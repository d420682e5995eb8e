package content

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/repository/kv"
)

// CursorKey is the key-value entry holding the sequential reading position.
const CursorKey = "sequential_cursor"

// errEmptyCatalog is returned by a catalog without verses.
var errEmptyCatalog = errors.New("catalog is empty")

// Catalog is the curated verse list.
type Catalog struct {
	verses []Verse
	cursor kv.Store
	intN   func(n int) int
}

// NewCatalog creates a catalog over verses. The sequential cursor is kept in
// store under CursorKey so reading order survives restarts.
func NewCatalog(verses []Verse, store kv.Store) *Catalog {
	return &Catalog{
		verses: verses,
		cursor: store,
		intN:   rand.IntN,
	}
}

// Verses returns a copy of the catalog contents.
func (c *Catalog) Verses() []Verse {
	return append([]Verse(nil), c.verses...)
}

// RandomVerse picks a verse matching sel.
// Testament selection is not supported by the catalog and yields ErrNoVerse.
func (c *Catalog) RandomVerse(_ context.Context, sel alarm.ContentSelector) (Verse, error) {
	var candidates []Verse

	for _, v := range c.verses {
		if catalogMatches(v, sel) {
			candidates = append(candidates, v)
		}
	}

	if len(candidates) == 0 {
		return Verse{}, fmt.Errorf("%w: %s", ErrNoVerse, sel)
	}

	return candidates[c.intN(len(candidates))], nil
}

// NextSequentialVerse returns the verse at the cursor and advances it,
// wrapping at the end of the list.
func (c *Catalog) NextSequentialVerse(ctx context.Context) (Verse, error) {
	if len(c.verses) == 0 {
		return Verse{}, errEmptyCatalog
	}

	var verse Verse

	err := c.cursor.Update(ctx, CursorKey, func(current string, _ bool) (string, error) {
		// A missing or damaged cursor restarts from the beginning.
		idx, err := strconv.Atoi(strings.TrimSpace(current))
		if err != nil || idx < 0 {
			idx = 0
		}

		idx %= len(c.verses)
		verse = c.verses[idx]

		return strconv.Itoa((idx + 1) % len(c.verses)), nil
	})
	if err != nil {
		return Verse{}, fmt.Errorf("advance sequential cursor: %w", err)
	}

	return verse, nil
}

func catalogMatches(v Verse, sel alarm.ContentSelector) bool {
	switch sel.Source {
	case alarm.SourceCategory:
		return v.Category == sel.Category
	case alarm.SourceFullBible:
		return true
	case alarm.SourceSpecificBook:
		return strings.EqualFold(v.Book, sel.Book)
	case alarm.SourceSpecificChapter:
		return strings.EqualFold(v.Book, sel.Book) && v.Chapter == sel.Chapter
	default:
		return false
	}
}

// BuiltinVerses returns the curated verse list shipped with the daemon.
func BuiltinVerses() []Verse {
	return []Verse{
		{"Psalm", 118, 24, "This is the day that the Lord has made; let us rejoice and be glad in it.", alarm.CategoryMorning},
		{"Lamentations", 3, 22, "The steadfast love of the Lord never ceases; his mercies never come to an end; they are new every morning; great is your faithfulness.", alarm.CategoryMorning},
		{"Psalm", 5, 3, "In the morning, Lord, you hear my voice; in the morning I lay my requests before you and wait expectantly.", alarm.CategoryMorning},
		{"Psalm", 143, 8, "Let the morning bring me word of your unfailing love, for I have put my trust in you. Show me the way I should go, for to you I entrust my life.", alarm.CategoryMorning},

		{"Joshua", 1, 9, "Have I not commanded you? Be strong and courageous. Do not be afraid; do not be discouraged, for the Lord your God will be with you wherever you go.", alarm.CategoryEncouragement},
		{"Isaiah", 41, 10, "So do not fear, for I am with you; do not be dismayed, for I am your God. I will strengthen you and help you; I will uphold you with my righteous right hand.", alarm.CategoryEncouragement},
		{"Philippians", 4, 13, "I can do all things through Christ who strengthens me.", alarm.CategoryEncouragement},
		{"Romans", 8, 28, "And we know that in all things God works for the good of those who love him, who have been called according to his purpose.", alarm.CategoryEncouragement},
		{"Jeremiah", 29, 11, "For I know the plans I have for you, declares the Lord, plans to prosper you and not to harm you, plans to give you hope and a future.", alarm.CategoryEncouragement},

		{"Psalm", 23, 1, "The Lord is my shepherd; I shall not want.", alarm.CategoryPsalms},
		{"Psalm", 27, 1, "The Lord is my light and my salvation; whom shall I fear? The Lord is the stronghold of my life; of whom shall I be afraid?", alarm.CategoryPsalms},
		{"Psalm", 46, 1, "God is our refuge and strength, a very present help in trouble.", alarm.CategoryPsalms},
		{"Psalm", 91, 1, "He who dwells in the shelter of the Most High will abide in the shadow of the Almighty.", alarm.CategoryPsalms},
		{"Psalm", 121, 1, "I lift up my eyes to the hills. From where does my help come? My help comes from the Lord, who made heaven and earth.", alarm.CategoryPsalms},

		{"Proverbs", 3, 5, "Trust in the Lord with all your heart and lean not on your own understanding; in all your ways submit to him, and he will make your paths straight.", alarm.CategoryProverbs},
		{"Proverbs", 16, 3, "Commit to the Lord whatever you do, and he will establish your plans.", alarm.CategoryProverbs},
		{"Proverbs", 4, 23, "Above all else, guard your heart, for everything you do flows from it.", alarm.CategoryProverbs},

		{"Matthew", 5, 14, "You are the light of the world. A city set on a hill cannot be hidden.", alarm.CategoryGospelMatthew},
		{"Matthew", 6, 33, "But seek first the kingdom of God and his righteousness, and all these things will be added to you.", alarm.CategoryGospelMatthew},
		{"Matthew", 11, 28, "Come to me, all you who are weary and burdened, and I will give you rest.", alarm.CategoryGospelMatthew},
		{"Matthew", 28, 20, "And behold, I am with you always, to the end of the age.", alarm.CategoryGospelMatthew},

		{"Mark", 10, 27, "Jesus looked at them and said, 'With man it is impossible, but not with God. For all things are possible with God.'", alarm.CategoryGospelMark},
		{"Mark", 11, 24, "Therefore I tell you, whatever you ask in prayer, believe that you have received it, and it will be yours.", alarm.CategoryGospelMark},

		{"Luke", 1, 37, "For nothing will be impossible with God.", alarm.CategoryGospelLuke},
		{"Luke", 6, 31, "Do to others as you would have them do to you.", alarm.CategoryGospelLuke},
		{"Luke", 12, 32, "Fear not, little flock, for it is your Father's good pleasure to give you the kingdom.", alarm.CategoryGospelLuke},

		{"John", 3, 16, "For God so loved the world, that he gave his only Son, that whoever believes in him should not perish but have eternal life.", alarm.CategoryGospelJohn},
		{"John", 14, 6, "Jesus said to him, 'I am the way, and the truth, and the life. No one comes to the Father except through me.'", alarm.CategoryGospelJohn},
		{"John", 14, 27, "Peace I leave with you; my peace I give to you. Not as the world gives do I give to you. Let not your hearts be troubled, neither let them be afraid.", alarm.CategoryGospelJohn},
		{"John", 16, 33, "I have said these things to you, that in me you may have peace. In the world you will have tribulation. But take heart; I have overcome the world.", alarm.CategoryGospelJohn},

		{"1 Corinthians", 16, 13, "Be on your guard; stand firm in the faith; be courageous; be strong.", alarm.CategoryGeneral},
		{"2 Timothy", 1, 7, "For God gave us a spirit not of fear but of power and love and self-control.", alarm.CategoryGeneral},
		{"Hebrews", 11, 1, "Now faith is the assurance of things hoped for, the conviction of things not seen.", alarm.CategoryGeneral},
		{"1 Peter", 5, 7, "Cast all your anxiety on him because he cares for you.", alarm.CategoryGeneral},
		{"Colossians", 3, 23, "Whatever you do, work heartily, as for the Lord and not for men.", alarm.CategoryGeneral},
	}
}
