package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/stockdex"
)

// intentFlags are shared by search and explain.
type intentFlags struct {
	file             string
	query            string
	categories       []string
	names            []string
	excludeNames     []string
	authors          []string
	publishers       []string
	excludePublisher []string
	groups           []string
	tags             []string
	anyTags          []string
	excludeTags      []string
	minPrice         int64
	maxPrice         int64
	inStock          bool
	all              bool
	sortBy           string
	direction        string
	limit            int
	debug            bool
}

func (f *intentFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.file, "intent", "i", "", "read a JSON intent from file (- for stdin); other filter flags are ignored")
	fs.StringVarP(&f.query, "query", "q", "", "free-text query")
	fs.StringSliceVarP(&f.categories, "category", "c", nil, "category code(s)")
	fs.StringArrayVar(&f.names, "name", nil, "name must contain term (repeatable)")
	fs.StringArrayVar(&f.excludeNames, "exclude-name", nil, "name must not contain term (repeatable)")
	fs.StringArrayVar(&f.authors, "author", nil, "author must contain term (repeatable)")
	fs.StringArrayVar(&f.publishers, "publisher", nil, "publisher or brand, alias-expanded (repeatable)")
	fs.StringArrayVar(&f.excludePublisher, "exclude-publisher", nil, "publisher or brand to drop (repeatable)")
	fs.StringArrayVar(&f.groups, "group", nil, "product group must contain term (repeatable)")
	fs.StringArrayVar(&f.tags, "tag", nil, "required tag (repeatable)")
	fs.StringArrayVar(&f.anyTags, "any-tag", nil, "at least one of these tags (repeatable)")
	fs.StringArrayVar(&f.excludeTags, "exclude-tag", nil, "tag to drop (repeatable)")
	fs.Int64Var(&f.minPrice, "min-price", -1, "minimum price in toman")
	fs.Int64Var(&f.maxPrice, "max-price", -1, "maximum price in toman")
	fs.BoolVar(&f.inStock, "in-stock", false, "drop items known to be out of stock")
	fs.BoolVar(&f.all, "all", false, "include rows without storefront tags")
	fs.StringVar(&f.sortBy, "sort", string(stockdex.SortRelevance), "relevance, price or qty")
	fs.StringVar(&f.direction, "dir", string(stockdex.Desc), "asc or desc")
	fs.IntVarP(&f.limit, "limit", "n", 10, "max results (1-50)")
	fs.BoolVar(&f.debug, "debug", false, "attach the compiled query to the response")
}

// build turns the flags into a validated intent.
func (f *intentFlags) build(stdin io.Reader) (stockdex.Intent, error) {
	if f.file != "" {
		data, err := readIntentFile(f.file, stdin)
		if err != nil {
			return stockdex.Intent{}, err
		}
		return stockdex.DecodeIntent(data)
	}

	q := new(stockdex.Client).Query().
		Text(f.query).
		Name(f.names...).
		ExcludeName(f.excludeNames...).
		Author(f.authors...).
		Publisher(f.publishers...).
		ExcludePublisher(f.excludePublisher...).
		Group(f.groups...).
		Tags(f.tags...).
		AnyTag(f.anyTags...).
		ExcludeTags(f.excludeTags...).
		SortBy(stockdex.SortKey(f.sortBy), stockdex.Direction(f.direction)).
		Limit(f.limit)

	if len(f.categories) > 0 {
		q.Category(f.categories...)
	}
	if f.minPrice >= 0 {
		q.MinPrice(f.minPrice)
	}
	if f.maxPrice >= 0 {
		q.MaxPrice(f.maxPrice)
	}
	if f.inStock {
		q.InStock()
	}
	if f.all {
		q.IncludeUnuploaded()
	}
	if f.debug {
		q.Debug()
	}

	in := q.Intent()
	if err := in.Validate(); err != nil {
		return stockdex.Intent{}, err
	}
	return in, nil
}

func readIntentFile(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intent: %w", err)
	}
	return data, nil
}

var searchFlags intentFlags

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a search and print the response envelope",
	Example: `  stockdexctl search -q "خودکار پارکر" -c s --max-price 2000000
  echo '{"query_text":"دفتر"}' | stockdexctl search -i -`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchFlags.register(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	in, err := searchFlags.build(cmd.InOrStdin())
	if err != nil {
		return err
	}

	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	env, err := client.Search(cmd.Context(), in)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), env)
}
