// Package sqlinline holds every SQL statement the service runs. Each statement
// starts with a "--sql <uuid>" marker line that infra.SQLRunner strips and logs.
package sqlinline

const QEnsureArtworks = `--sql 36d370bf-0641-44b1-825e-60b17ff67b60
create table if not exists artworks (
    id uuid primary key,
    medium text not null,
    data jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create index if not exists artworks_medium_idx on artworks (medium);
`

const QListArtworks = `--sql d1e51f0d-9f12-41c6-8d02-6a8e69e99fd7
select id::text, medium, data, created_at, updated_at
from artworks
order by medium, id;
`

const QGetArtwork = `--sql 7ed2162f-7989-4980-897e-afde4d6e9c39
select id::text, medium, data, created_at, updated_at
from artworks
where id = $1::uuid and medium = $2::text;
`

const QInsertArtwork = `--sql 1955ea11-4a5b-4126-b5e1-af18cc6f13fa
insert into artworks (id, medium, data, created_at, updated_at)
values ($1::uuid, $2::text, $3::jsonb, now(), now())
returning created_at, updated_at;
`

// QUpdateArtwork also moves the row when the medium changed.
const QUpdateArtwork = `--sql ea4057d2-8126-4e92-a618-4d20d5d8a7e5
update artworks
set medium = $3::text, data = $4::jsonb, updated_at = now()
where id = $1::uuid and medium = $2::text
returning created_at, updated_at;
`

const QDeleteArtwork = `--sql 25c938e8-c081-4848-819a-1dffb0ae3de9
delete from artworks
where id = $1::uuid and medium = $2::text;
`

const QPing = `--sql 9ef84df3-8665-4325-95e4-ea2a555684ac
select 1;
`

// All lists every statement in this package.
var All = map[string]string{
	"QEnsureArtworks": QEnsureArtworks,
	"QListArtworks":   QListArtworks,
	"QGetArtwork":     QGetArtwork,
	"QInsertArtwork":  QInsertArtwork,
	"QUpdateArtwork":  QUpdateArtwork,
	"QDeleteArtwork":  QDeleteArtwork,
	"QPing":           QPing,
}
