package typescript

import (
	"text/template"

	"github.com/schemaforge/schemaforge/naming"
)

var funcs = template.FuncMap{
	"pascal":   naming.Pascal,
	"camel":    naming.Camel,
	"snake":    naming.Snake,
	"kebab":    naming.Kebab,
	"plural":   naming.Plural,
	"singular": naming.Singular,
}

var templates = template.Must(template.New("typescript").Funcs(funcs).Parse(`
{{- define "entity" -}}
import { {{.OrmImports}} } from 'typeorm';

import { BaseEntity } from '../../common/base.entity';
{{- range .EntityImports}}
import { {{.Entity}} } from '{{.Path}}';
{{- end}}

@Entity('{{.Table}}')
export class {{.Entity}} extends BaseEntity {
  {{.IDDecorator}}
  id: {{.IDType}};
{{range .Fields}}
  @Column({ name: '{{.Column}}', {{.Orm}}, nullable: {{.NullableTs}}{{if .Unique}}, unique: true{{end}} })
  {{.Name}}: {{.Type}};
{{end}}
{{- range .ForeignKeys}}
  @Column({ name: '{{.Column}}', {{.Orm}}, nullable: {{.NullableTs}} })
  {{.Name}}: {{.Type}};
{{end}}
{{- range .ManyToOnes}}
  @ManyToOne(() => {{.Entity}}, ({{.Param}}) => {{.Param}}.{{.Inverse}})
  @JoinColumn({ name: '{{.Column}}' })
  {{.Name}}: {{.Entity}};
{{end}}
{{- range .OneToManys}}
  @OneToMany(() => {{.Entity}}, ({{.Param}}) => {{.Param}}.{{.Inverse}})
  {{.Name}}: {{.Entity}}[];
{{end}}
{{- range .ManyToManys}}
  @ManyToMany(() => {{.Entity}}, ({{.Param}}) => {{.Param}}.{{.Inverse}})
{{- if .Owning}}
  @JoinTable({
    name: '{{.JoinTable}}',
    joinColumn: { name: '{{.JoinColumn}}' },
    inverseJoinColumn: { name: '{{.InverseJoinColumn}}' },
  })
{{- end}}
  {{.Name}}: {{.Entity}}[];
{{end -}}
}
{{end}}

{{- define "dto" -}}
import { {{.ValidatorImports}} } from 'class-validator';

export class {{.Entity}}Dto {
  @IsOptional()
  {{.IDValidator}}
  id: {{.IDType}} | null;
{{range .Fields}}
{{- if .Nullable}}
  @IsOptional()
{{- end}}
  {{.Validator}}
  {{.Name}}: {{.Type}};
{{end}}
{{- range .RelationIds}}
{{- if .Nullable}}
  @IsOptional()
{{- end}}
  {{.Validator}}
  {{.Name}}: {{.Type}};
{{end -}}
}
{{end}}

{{- define "mapper" -}}
import { {{.Entity}}Dto } from '../dto/{{.File}}.dto';
import { {{.Entity}} } from '../entities/{{.File}}.entity';

export class {{.Entity}}Mapper {
  static toDto(entity: {{.Entity}}): {{.Entity}}Dto {
    const dto = new {{.Entity}}Dto();
    dto.id = entity.id;
{{- range .Fields}}
    dto.{{.Name}} = entity.{{.Name}};
{{- end}}
{{- range .ManyToOnes}}
    dto.{{.IdField}} = entity.{{.IdField}};
{{- end}}
{{- range .ManyToManys}}
    dto.{{.IdField}} = (entity.{{.Name}} ?? []).map((item) => item.id);
{{- end}}
    return dto;
  }

  static toEntity(dto: {{.Entity}}Dto): {{.Entity}} {
    const entity = new {{.Entity}}();
{{- range .Fields}}
    entity.{{.Name}} = dto.{{.Name}};
{{- end}}
{{- range .ManyToOnes}}
    entity.{{.IdField}} = dto.{{.IdField}};
{{- end}}
    return entity;
  }
}
{{end}}

{{- define "repository" -}}
import { Injectable } from '@nestjs/common';
import { InjectRepository } from '@nestjs/typeorm';
import { Repository } from 'typeorm';

import { {{.Entity}} } from '../entities/{{.File}}.entity';

@Injectable()
export class {{.Entity}}Repository {
  constructor(
    @InjectRepository({{.Entity}})
    private readonly repository: Repository<{{.Entity}}>,
  ) {}

  findAll(): Promise<{{.Entity}}[]> {
    return this.repository.find();
  }

  findOne(id: {{.IDType}}): Promise<{{.Entity}} | null> {
    return this.repository.findOneBy({ id });
  }

  save(entity: {{.Entity}}): Promise<{{.Entity}}> {
    return this.repository.save(entity);
  }

  async remove(entity: {{.Entity}}): Promise<void> {
    await this.repository.remove(entity);
  }
}
{{end}}

{{- define "service" -}}
import { Injectable, NotFoundException } from '@nestjs/common';

import { {{.Entity}}Dto } from '../dto/{{.File}}.dto';
import { {{.Entity}} } from '../entities/{{.File}}.entity';
import { {{.Entity}}Mapper } from '../mappers/{{.File}}.mapper';
import { {{.Entity}}Repository } from '../repositories/{{.File}}.repository';

@Injectable()
export class {{.Entity}}Service {
  constructor(private readonly repository: {{.Entity}}Repository) {}

  async findAll(): Promise<{{.Entity}}Dto[]> {
    const entities = await this.repository.findAll();
    return entities.map((entity) => {{.Entity}}Mapper.toDto(entity));
  }

  async findOne(id: {{.IDType}}): Promise<{{.Entity}}Dto> {
    return {{.Entity}}Mapper.toDto(await this.getOrFail(id));
  }

  async create(dto: {{.Entity}}Dto): Promise<{{.Entity}}Dto> {
    const entity = {{.Entity}}Mapper.toEntity(dto);
    return {{.Entity}}Mapper.toDto(await this.repository.save(entity));
  }

  async update(id: {{.IDType}}, dto: {{.Entity}}Dto): Promise<{{.Entity}}Dto> {
    const entity = await this.getOrFail(id);
{{- range .Fields}}
    entity.{{.Name}} = dto.{{.Name}};
{{- end}}
{{- range .ManyToOnes}}
    entity.{{.IdField}} = dto.{{.IdField}};
{{- end}}
    return {{.Entity}}Mapper.toDto(await this.repository.save(entity));
  }

  async remove(id: {{.IDType}}): Promise<void> {
    await this.repository.remove(await this.getOrFail(id));
  }

  private async getOrFail(id: {{.IDType}}): Promise<{{.Entity}}> {
    const entity = await this.repository.findOne(id);
    if (entity === null) {
      throw new NotFoundException('{{.Entity}} not found');
    }
    return entity;
  }
}
{{end}}

{{- define "controller" -}}
import {
  Body,
  Controller,
  Delete,
  Get,
  HttpCode,
  HttpStatus,
  Param,{{if .IDPipe}}
  {{.IDPipe}},{{end}}
  Post,
  Put,
} from '@nestjs/common';

import { {{.Entity}}Dto } from '../dto/{{.File}}.dto';
import { {{.Entity}}Service } from '../services/{{.File}}.service';

@Controller('api/{{.Path}}')
export class {{.Entity}}Controller {
  constructor(private readonly service: {{.Entity}}Service) {}

  @Get()
  findAll(): Promise<{{.Entity}}Dto[]> {
    return this.service.findAll();
  }

  @Get(':id')
  findOne(@Param('id'{{if .IDPipe}}, {{.IDPipe}}{{end}}) id: {{.IDType}}): Promise<{{.Entity}}Dto> {
    return this.service.findOne(id);
  }

  @Post()
  @HttpCode(HttpStatus.CREATED)
  create(@Body() dto: {{.Entity}}Dto): Promise<{{.Entity}}Dto> {
    return this.service.create(dto);
  }

  @Put(':id')
  update(
    @Param('id'{{if .IDPipe}}, {{.IDPipe}}{{end}}) id: {{.IDType}},
    @Body() dto: {{.Entity}}Dto,
  ): Promise<{{.Entity}}Dto> {
    return this.service.update(id, dto);
  }

  @Delete(':id')
  @HttpCode(HttpStatus.NO_CONTENT)
  remove(@Param('id'{{if .IDPipe}}, {{.IDPipe}}{{end}}) id: {{.IDType}}): Promise<void> {
    return this.service.remove(id);
  }
}
{{end}}

{{- define "base_entity" -}}
import { {{.OrmImports}} } from 'typeorm';

export abstract class BaseEntity {
{{- range .Audit}}
  {{.Decorator}}
  {{.Name}}: {{.Type}};
{{end -}}
}
{{end}}

{{- define "app_module" -}}
import { Module } from '@nestjs/common';
import { TypeOrmModule } from '@nestjs/typeorm';

{{range .Imports}}import { {{.Name}} } from '{{.Path}}';
{{end}}
@Module({
  imports: [
    TypeOrmModule.forFeature([{{.Entities}}]),
  ],
  controllers: [{{.Controllers}}],
  providers: [{{.Providers}}],
})
export class AppModule {}
{{end}}
`))
