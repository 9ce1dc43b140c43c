package trackers

// builtinFragments is the built-in tracker list: URL fragments of known
// tracking services, matched by plain substring containment against the full
// request URL. Loaded once at process start and never mutated.
var builtinFragments = []string{
	"google-analytics.com",
	"googletagmanager.com",
	"doubleclick.net",
	"adservice.google.com",
	"connect.facebook.net",
	"facebook.com/tr",
	"ads.twitter.com",
	"static.ads-twitter.com",
	"amazon-adsystem.com",
	"scorecardresearch.com",
	"quantserve.com",
	"hotjar.com",
	"mouseflow.com",
	"segment.io",
	"mixpanel.com",
	"criteo.com",
	"criteo.net",
	"taboola.com",
	"outbrain.com",
	"adnxs.com",
	"rubiconproject.com",
	"pubmatic.com",
	"openx.net",
	"moatads.com",
	"chartbeat.com",
	"newrelic.com/nr-data",
	"bat.bing.com",
	"yandex.ru/metrika",
}

// Builtin returns a copy of the built-in tracker fragment list.
func Builtin() []string {
	out := make([]string, len(builtinFragments))
	copy(out, builtinFragments)
	return out
}
